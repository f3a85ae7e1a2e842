// internal/forecast/health.go
package forecast

// ProductHealth pairs a product's materialized metrics with the score
// computed from them. This is the unit the health endpoint returns and
// the cache stores.
type ProductHealth struct {
	ProductCode string           `json:"product_code"`
	ProductName string           `json:"product_name"`
	Metrics     HealthMetrics    `json:"metrics"`
	Result      ConfidenceResult `json:"result"`
}
