package dto

// OnboardTenantRequest represents a shop connection request
type OnboardTenantRequest struct {
	ShopDomain  string `json:"shop_domain" binding:"required" example:"acme-store.myshopify.com"`
	AccessToken string `json:"access_token" binding:"required" example:"shpat_xxxxxxxxxxxxxxxx"`
	ShopName    string `json:"shop_name" example:"Acme Store"`
}
