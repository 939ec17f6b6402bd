package models

type Product struct {
	ID          string  `json:"id"`
	ProductName string  `json:"productName"`
	Code        string  `json:"code"`
	Price       float64 `json:"price"`
	Model       string  `json:"model"`
	ProductURL  string  `json:"productUrl"`
}

// ProductInput carries the mutable product fields; the id is always
// assigned server-side.
type ProductInput struct {
	ProductName string  `json:"productName" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Price       float64 `json:"price" binding:"min=0"`
	Model       string  `json:"model"`
	ProductURL  string  `json:"productUrl"`
}
