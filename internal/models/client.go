package models

// Geo is a coordinate pair in decimal degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Client is a normalized customer record. ID is assigned locally and is
// unique within a repository cache.
type Client struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// ClientInput is a client as submitted for creation. Address.Geo is ignored;
// coordinates are resolved from the zip code.
type ClientInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// PostalAddress is the address record a postal-code lookup returns.
type PostalAddress struct {
	CEP      string `json:"cep"`
	Street   string `json:"street"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Region frames a set of points on a map.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}
