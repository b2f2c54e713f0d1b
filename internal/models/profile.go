package models

// PressingProfile is the business profile aggregate as returned by the
// upstream pressing API. Only the fields this service reads or writes are
// modelled; unknown fields round-trip untouched on the backend side.
type PressingProfile struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Description string        `json:"description,omitempty"`
	Address     AddressRecord `json:"address"`
}

// PressingStats is the dashboard statistics snapshot.
type PressingStats struct {
	OrdersToday     int     `json:"orders_today"`
	OrdersPending   int     `json:"orders_pending"`
	RevenueToday    float64 `json:"revenue_today"`
	RevenueMonth    float64 `json:"revenue_month"`
	AverageRating   float64 `json:"average_rating"`
	ReviewCount     int     `json:"review_count"`
	ActiveCustomers int     `json:"active_customers"`
}

// Service is a priced laundry service offered by the pressing.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Available   bool    `json:"available"`
}

// DeliveryZone is a serviced area with its delivery fee.
type DeliveryZone struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	District string  `json:"district"`
	Fee      float64 `json:"fee"`
	Active   bool    `json:"active"`
}
