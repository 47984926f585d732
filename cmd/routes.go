package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	baseMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	standardMiddleware := baseMiddleware.Append(makeResponseJSON)
	userAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))
	companyAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("company"))

	mux := pat.New()

	// Public: click tracking and bio rendering
	mux.Get("/sponsored/click/:trackingCode", baseMiddleware.ThenFunc(app.clickHandler.Redirect))
	mux.Get("/sponsored/bio/:bioId", standardMiddleware.ThenFunc(app.adoptionHandler.BioAdoptions))
	mux.Get("/sponsored/offers", standardMiddleware.ThenFunc(app.offerHandler.Marketplace))
	mux.Get("/sponsored/marketplace/:id", standardMiddleware.ThenFunc(app.offerHandler.MarketplaceOffer))

	// Publisher
	mux.Post("/sponsored/adopt", userAuthMiddleware.ThenFunc(app.adoptionHandler.Adopt))
	mux.Get("/sponsored/adoptions", userAuthMiddleware.ThenFunc(app.adoptionHandler.UserAdoptions))
	mux.Del("/sponsored/adoptions/:id", userAuthMiddleware.ThenFunc(app.adoptionHandler.Remove))
	mux.Get("/sponsored/adoptions/:id/stats", userAuthMiddleware.ThenFunc(app.clickHandler.AdoptionStats))
	mux.Get("/sponsored/earnings", userAuthMiddleware.ThenFunc(app.adoptionHandler.Earnings))
	mux.Get("/sponsored/earnings/history", userAuthMiddleware.ThenFunc(app.adoptionHandler.EarningsHistory))

	// Advertiser
	mux.Post("/company/offers", companyAuthMiddleware.ThenFunc(app.offerHandler.CreateOffer))
	mux.Get("/company/offers", companyAuthMiddleware.ThenFunc(app.offerHandler.ListCompanyOffers))
	mux.Put("/company/offers/:id", companyAuthMiddleware.ThenFunc(app.offerHandler.UpdateOffer))
	mux.Post("/company/offers/:id/pause", companyAuthMiddleware.ThenFunc(app.offerHandler.PauseOffer))
	mux.Get("/company/offers/:id/stats", companyAuthMiddleware.ThenFunc(app.offerHandler.OfferStats))
	mux.Post("/company/offers/image", companyAuthMiddleware.ThenFunc(app.offerHandler.UploadOfferImage))

	return baseMiddleware.Then(mux)
}
