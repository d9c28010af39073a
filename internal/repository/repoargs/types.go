package repoargs

type RepositoryName string

const (
	UserRepoName     RepositoryName = "user"
	BusinessRepoName RepositoryName = "business"
	ProductRepoName  RepositoryName = "product"
	OrderRepoName    RepositoryName = "order"
)

// Page параметры пагинации. Страницы нумеруются с единицы.
type Page struct {
	Number int64
	Size   int64
}

func (p Page) Offset() int64 {
	return (p.Number - 1) * p.Size
}
