package handlers

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Auth   *AuthHandler
	User   *UserHandler
	Media  *MediaHandler
	Review *ReviewHandler
	Loan   *LoanHandler
	Admin  *AdminHandler
}

// NewProvider groups the handlers.
func NewProvider(authHandler *AuthHandler, userHandler *UserHandler, mediaHandler *MediaHandler, reviewHandler *ReviewHandler, loanHandler *LoanHandler, adminHandler *AdminHandler) *Provider {
	return &Provider{
		Auth:   authHandler,
		User:   userHandler,
		Media:  mediaHandler,
		Review: reviewHandler,
		Loan:   loanHandler,
		Admin:  adminHandler,
	}
}
