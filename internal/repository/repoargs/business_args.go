package repoargs

type CreateBusiness struct {
	Name        string
	City        string
	Region      string
	Description string
	Logo        string
	OwnerID     *int64
}

type UpdateBusiness struct {
	Name        string
	City        string
	Region      string
	Description string
}
