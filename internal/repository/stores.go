package repository

// Stores 存储集合
type Stores struct {
	User    *UserStore
	Rating  *RatingStore
	Catalog *Catalog
}

// NewStores 创建存储集合，不触发加载，由调用方统一 Load
func NewStores(userPath, ratingPath, catalogPath string) *Stores {
	return &Stores{
		User:    NewUserStore(userPath),
		Rating:  NewRatingStore(ratingPath),
		Catalog: NewCatalog(catalogPath),
	}
}
