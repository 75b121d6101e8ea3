package v1

import "github.com/neusearch/neusearch/store"

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response string            `json:"response"`
	Products []productResponse `json:"products"`
}

type productRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type productResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

type ingestResponse struct {
	Message           string `json:"message"`
	RunID             string `json:"run_id"`
	ProcessedProducts int    `json:"processed_products"`
	TotalEmbeddings   int    `json:"total_embeddings"`
	FailedProducts    int    `json:"failed_products"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func convertProductFromStore(p *store.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
	}
}

func convertProductsFromStore(list []*store.Product) []productResponse {
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, convertProductFromStore(p))
	}
	return out
}
