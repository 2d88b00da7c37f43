package store

// Current-generation logical keys. Every Save writes all of them.
const (
	KeyEntries        = "catalog-entries"
	KeyCatalogVersion = "catalog-version"
	KeyCategories     = "categories"
	KeyCategoryColors = "category-colors"
	KeyFavorites      = "favorites-ledger"
	KeyActiveIdentity = "active-identity"
	KeyIsAuthorized   = "is-authorized"
)

// Legacy keys, read once for migration and deleted after the first
// successful current-generation write.
const (
	LegacyKeyVault          = "integral_v412_vault"
	LegacyKeyAuth           = "integral_v411_auth"
	LegacyKeyCategories     = "integral_v412_categories"
	LegacyKeyCategoryColors = "integral_v412_cat_colors"
)

// CurrentKeys lists the current-generation keys in write order.
func CurrentKeys() []string {
	return []string{
		KeyEntries,
		KeyCatalogVersion,
		KeyCategories,
		KeyCategoryColors,
		KeyFavorites,
		KeyActiveIdentity,
		KeyIsAuthorized,
	}
}

// LegacyKeys lists every legacy key.
func LegacyKeys() []string {
	return []string{LegacyKeyVault, LegacyKeyAuth, LegacyKeyCategories, LegacyKeyCategoryColors}
}
