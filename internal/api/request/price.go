package request

// RefreshPricesRequest asks for daily prices of Symbols between From and To (YYYY-MM-DD,
// both inclusive). An empty To means today.
type RefreshPricesRequest struct {
	Symbols []string `json:"symbols"`
	From    string   `json:"from"`
	To      string   `json:"to"`
}
