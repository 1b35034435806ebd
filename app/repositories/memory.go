package repositories

// In-memory repository implementations. They back the test suite and local
// development without a MongoDB instance, and mirror the Mongo behaviour the
// services depend on: modified counts, duplicate rejection, newest-first
// listings.

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chefbazaar/backend/app/models"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by email
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: map[string]*models.User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Email]; ok {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	clone := *u
	r.users[u.Email] = &clone
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memoryUserRepository) SetRole(_ context.Context, email, role, chefID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return 0, nil
	}

	modified := int64(0)
	if u.Role != role {
		u.Role = role
		modified = 1
	}
	if chefID != "" && u.ChefID != chefID {
		u.ChefID = chefID
		modified = 1
	}
	return modified, nil
}

func (r *memoryUserRepository) SetStatus(_ context.Context, email, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return 0, nil
	}
	if u.Status == status {
		return 0, nil
	}
	u.Status = status
	return 1, nil
}

func (r *memoryUserRepository) List(_ context.Context, page, limit int64) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return []models.User{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryUserRepository) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: map[string]*models.Order{}}
}

func (r *memoryOrderRepository) Insert(_ context.Context, o *models.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	clone := *o
	r.orders[o.ID.Hex()] = &clone
	return o.ID.Hex(), nil
}

func (r *memoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *memoryOrderRepository) SetOrderStatus(_ context.Context, id, status string) (int64, error) {
	return r.setField(id, func(o *models.Order) *string { return &o.OrderStatus }, status)
}

func (r *memoryOrderRepository) SetPaymentStatus(_ context.Context, id, status string) (int64, error) {
	return r.setField(id, func(o *models.Order) *string { return &o.PaymentStatus }, status)
}

func (r *memoryOrderRepository) setField(id string, field func(*models.Order) *string, value string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return 0, ErrNotFound
	}

	f := field(o)
	if *f == value {
		return 0, nil
	}
	*f = value
	return 1, nil
}

func (r *memoryOrderRepository) ListByUser(_ context.Context, email string) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.UserEmail == email }), nil
}

func (r *memoryOrderRepository) ListByChef(_ context.Context, chefID string) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.ChefID == chefID }), nil
}

func (r *memoryOrderRepository) list(match func(*models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, o := range r.orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderTime.After(out[j].OrderTime) })
	return out
}

func (r *memoryOrderRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

type memoryPaymentRepository struct {
	mu       sync.RWMutex
	payments []models.Payment
}

func NewMemoryPaymentRepository() PaymentRepository {
	return &memoryPaymentRepository{}
}

func (r *memoryPaymentRepository) Insert(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payments {
		if existing.TransactionID == p.TransactionID {
			return ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *memoryPaymentRepository) FindByTransaction(_ context.Context, transactionID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			clone := p
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryPaymentRepository) ListByUser(_ context.Context, email string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Payment
	for _, p := range r.payments {
		if p.UserEmail == email {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (r *memoryPaymentRepository) ListSince(_ context.Context, t time.Time) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Payment
	for _, p := range r.payments {
		if !p.PaidAt.Before(t) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (r *memoryPaymentRepository) TotalAmount(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, p := range r.payments {
		total += p.AmountPaid
	}
	return total, nil
}

func (r *memoryPaymentRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.payments)), nil
}

type memoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*models.AdminRequest
}

func NewMemoryRequestRepository() RequestRepository {
	return &memoryRequestRepository{requests: map[string]*models.AdminRequest{}}
}

func (r *memoryRequestRepository) Insert(_ context.Context, req *models.AdminRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	clone := *req
	r.requests[req.ID.Hex()] = &clone
	return req.ID.Hex(), nil
}

func (r *memoryRequestRepository) FindByID(_ context.Context, id string) (*models.AdminRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *memoryRequestRepository) SetStatus(_ context.Context, id, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return 0, ErrNotFound
	}
	if req.RequestStatus == status {
		return 0, nil
	}
	req.RequestStatus = status
	return 1, nil
}

func (r *memoryRequestRepository) List(_ context.Context, page, limit int64) ([]models.AdminRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	all := make([]models.AdminRequest, 0, len(r.requests))
	for _, req := range r.requests {
		all = append(all, *req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RequestTime.After(all[j].RequestTime) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return []models.AdminRequest{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

type memoryMealRepository struct {
	mu    sync.RWMutex
	meals map[string]*models.Meal
}

func NewMemoryMealRepository() MealRepository {
	return &memoryMealRepository{meals: map[string]*models.Meal{}}
}

func (r *memoryMealRepository) Insert(_ context.Context, m *models.Meal) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	clone := *m
	r.meals[m.ID.Hex()] = &clone
	return m.ID.Hex(), nil
}

func (r *memoryMealRepository) FindByID(_ context.Context, id string) (*models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meals[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memoryMealRepository) List(_ context.Context, sortDesc bool, chefID string) ([]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Meal
	for _, m := range r.meals {
		if chefID != "" && m.ChefID != chefID {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if sortDesc {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out, nil
}

func (r *memoryMealRepository) Update(_ context.Context, id string, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meals[id]
	if !ok {
		return 0, ErrNotFound
	}

	modified := int64(0)
	for key, val := range fields {
		switch key {
		case "foodName":
			if s, ok := val.(string); ok && m.FoodName != s {
				m.FoodName = s
				modified = 1
			}
		case "price":
			if f, ok := toF64(val); ok && m.Price != f {
				m.Price = f
				modified = 1
			}
		case "rating":
			if f, ok := toF64(val); ok && m.Rating != f {
				m.Rating = f
				modified = 1
			}
		case "foodImage":
			if s, ok := val.(string); ok && m.FoodImage != s {
				m.FoodImage = s
				modified = 1
			}
		case "deliveryArea":
			if s, ok := val.(string); ok && m.DeliveryArea != s {
				m.DeliveryArea = s
				modified = 1
			}
		case "estimatedDeliveryTime":
			if s, ok := val.(string); ok && m.EstimatedDeliveryTime != s {
				m.EstimatedDeliveryTime = s
				modified = 1
			}
		case "ingredients":
			if ss, ok := val.([]string); ok {
				m.Ingredients = ss
				modified = 1
			}
		}
	}
	return modified, nil
}

func toF64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (r *memoryMealRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meals[id]; !ok {
		return 0, ErrNotFound
	}
	delete(r.meals, id)
	return 1, nil
}

func (r *memoryMealRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.meals)), nil
}

type memoryReviewRepository struct {
	mu      sync.RWMutex
	reviews []models.Review
}

func NewMemoryReviewRepository() ReviewRepository {
	return &memoryReviewRepository{}
}

func (r *memoryReviewRepository) Insert(_ context.Context, rev *models.Review) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rev.ID.IsZero() {
		rev.ID = primitive.NewObjectID()
	}
	r.reviews = append(r.reviews, *rev)
	return rev.ID.Hex(), nil
}

func (r *memoryReviewRepository) ListByFood(_ context.Context, foodID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Review
	for _, rev := range r.reviews {
		if rev.FoodID == foodID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryFavoriteRepository struct {
	mu        sync.RWMutex
	favorites map[string]*models.Favorite
}

func NewMemoryFavoriteRepository() FavoriteRepository {
	return &memoryFavoriteRepository{favorites: map[string]*models.Favorite{}}
}

func (r *memoryFavoriteRepository) Insert(_ context.Context, f *models.Favorite) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.favorites {
		if existing.UserEmail == f.UserEmail && existing.FoodID == f.FoodID {
			return "", ErrDuplicate
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	clone := *f
	r.favorites[f.ID.Hex()] = &clone
	return f.ID.Hex(), nil
}

func (r *memoryFavoriteRepository) ListByUser(_ context.Context, email string) ([]models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Favorite
	for _, f := range r.favorites {
		if f.UserEmail == email {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (r *memoryFavoriteRepository) Delete(_ context.Context, id, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.favorites[id]
	if !ok || f.UserEmail != email {
		return 0, ErrNotFound
	}
	delete(r.favorites, id)
	return 1, nil
}
