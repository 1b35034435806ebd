// Package routes wires controllers, gates, and middleware onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/chefbazaar/backend/app/controllers"
	"github.com/chefbazaar/backend/app/policies"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/config"
	"github.com/chefbazaar/backend/pkg/cache"
	"github.com/chefbazaar/backend/pkg/metrics"
	"github.com/chefbazaar/backend/pkg/middleware"
	"github.com/chefbazaar/backend/pkg/response"
	"github.com/chefbazaar/backend/pkg/router"
)

// Deps carries everything route registration needs.
type Deps struct {
	Store    *repositories.Store
	Cache    *cache.Cache
	Checkout services.CheckoutProvider
}

// RegisterAPI builds the full HTTP surface.
func RegisterAPI(r *router.Router, d Deps) {
	accounts := services.NewAccountService(d.Store.Users)
	meals := services.NewMealService(d.Store.Meals, d.Store.Users, d.Cache)
	orders := services.NewOrderService(d.Store.Orders, d.Store.Users)
	payments := services.NewPaymentService(d.Checkout, d.Store.Orders, d.Store.Payments,
		config.CheckoutSuccessURL(), config.CheckoutCancelURL())
	escalations := services.NewEscalationService(d.Store.Users, d.Store.Requests)
	reviews := services.NewReviewService(d.Store.Reviews, d.Store.Favorites, d.Store.Meals)
	stats := services.NewStatsService(d.Store.Users, d.Store.Orders, d.Store.Meals, d.Store.Payments)

	authCtl := controllers.NewAuthController(accounts)
	userCtl := controllers.NewUserController(accounts)
	mealCtl := controllers.NewMealController(meals)
	orderCtl := controllers.NewOrderController(orders)
	paymentCtl := controllers.NewPaymentController(payments)
	adminCtl := controllers.NewAdminController(escalations, stats)
	reviewCtl := controllers.NewReviewController(reviews)
	favoriteCtl := controllers.NewFavoriteController(reviews)

	gates := policies.New(d.Store.Users)

	r.Get("/", "root", func(w http.ResponseWriter, _ *http.Request) {
		response.SuccessMessage(w, "LocalChefBazaar API", nil)
	})
	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())

	// Public surface.
	r.Post("/auth/register", "auth.register", authCtl.Register)
	r.Post("/auth/login", "auth.login", authCtl.Login, middleware.RateLimit(10, time.Minute))
	r.Post("/users", "users.create", userCtl.Create)
	r.Get("/meals", "meals.list", mealCtl.List)
	r.Get("/meals/{id}", "meals.get", mealCtl.Get)
	r.Get("/reviews/{foodId}", "reviews.list", reviewCtl.ListByFood)
	r.Post("/payment-success", "payments.reconcile", paymentCtl.Reconcile)

	// Anything signed in.
	authed := r.Group("", middleware.Authenticate)
	authed.Get("/users/{email}", "users.get", userCtl.Get)
	authed.Post("/orders", "orders.place", orderCtl.Place)
	authed.Get("/orders", "orders.mine", orderCtl.ListMine)
	authed.Post("/create-checkout-session", "payments.checkout", paymentCtl.CreateCheckout)
	authed.Get("/payments", "payments.mine", paymentCtl.ListMine)
	authed.Post("/admin/requests", "requests.submit", adminCtl.SubmitRequest)
	authed.Post("/reviews", "reviews.create", reviewCtl.Create)
	authed.Post("/favorites", "favorites.add", favoriteCtl.Add)
	authed.Get("/favorites", "favorites.mine", favoriteCtl.ListMine)
	authed.Delete("/favorites/{id}", "favorites.remove", favoriteCtl.Remove)

	// Chefs (and admins); fraud-flagged accounts are turned away.
	chef := authed.Group("", gates.RequireChef)
	chef.Post("/create-meals", "meals.create", mealCtl.Create)
	chef.Patch("/meals/{id}", "meals.update", mealCtl.Update)
	chef.Delete("/meals/{id}", "meals.delete", mealCtl.Delete)
	chef.Get("/orders/chef/{chefId}", "orders.chef", orderCtl.ListByChef)
	chef.Patch("/orders/status/{id}", "orders.status", orderCtl.UpdateStatus)

	// Admin only.
	admin := authed.Group("/admin", gates.RequireAdmin)
	admin.Get("/requests", "requests.list", adminCtl.ListRequests)
	admin.Patch("/requests/{id}", "requests.decide", adminCtl.DecideRequest)
	admin.Get("/users", "admin.users", userCtl.List)
	admin.Get("/stats", "admin.stats", adminCtl.Stats)

	fraud := authed.Group("", gates.RequireAdmin)
	fraud.Patch("/users/fraud/{email}", "users.fraud", userCtl.MarkFraud)
}
