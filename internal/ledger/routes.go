package ledger

import "github.com/go-chi/chi/v5"

// MountAccountRoutes attaches the provisioning endpoint.
func (h *Handler) MountAccountRoutes(r chi.Router) {
	r.Post("/", h.CreateAccount)
}

// MountWalletRoutes attaches the wallet endpoints.
func (h *Handler) MountWalletRoutes(r chi.Router) {
	r.Get("/", h.Wallet)
	r.Get("/transactions", h.Transactions)
	r.Post("/topup", h.TopUp)
}
