package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/harrylevesque/clientdir/internal/models"
)

// Coordinate is a latitude or longitude that the users backend transmits as
// a JSON string. Plain numbers are accepted too.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", data, err)
	}
	*c = Coordinate(f)
	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(c), 'f', -1, 64))
}

type Geo struct {
	Lat Coordinate `json:"lat"`
	Lng Coordinate `json:"lng"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite,omitempty"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// User is a record of the users backend.
type User struct {
	ID       int     `json:"id,omitempty"`
	Name     string  `json:"name"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
}

// ToClient normalizes u into a client record.
func (u User) ToClient() models.Client {
	return models.Client{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Address: models.Address{
			Street:  u.Address.Street,
			City:    u.Address.City,
			Zipcode: u.Address.Zipcode,
			Geo: models.Geo{
				Lat: float64(u.Address.Geo.Lat),
				Lng: float64(u.Address.Geo.Lng),
			},
		},
	}
}

// FromClient converts c to the backend wire shape.
func FromClient(c models.Client) User {
	return User{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Address: Address{
			Street:  c.Address.Street,
			City:    c.Address.City,
			Zipcode: c.Address.Zipcode,
			Geo: Geo{
				Lat: Coordinate(c.Address.Geo.Lat),
				Lng: Coordinate(c.Address.Geo.Lng),
			},
		},
	}
}
