package models

import (
	"encoding/json"
	"time"
)

// Currency is the single currency every listing price is expressed in.
const Currency = "SEK"

// Car is one normalized listing in the dealer's inventory.
type Car struct {
	ID           string    `json:"id"`
	BlocketURL   string    `json:"blocket_url"`
	Title        string    `json:"title"`
	Price        int       `json:"price"`
	Currency     string    `json:"currency"`
	Year         string    `json:"year"`
	Mileage      string    `json:"mileage"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	BodyType     string    `json:"body_type"`
	Color        string    `json:"color"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	EnginePower  string    `json:"engine_power"`
	Location     string    `json:"location"`
	Images       []string  `json:"images"`
	Description  string    `json:"description"`
	Regno        string    `json:"regno"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// UnmarshalJSON accepts fetched_at with or without a UTC offset.
func (c *Car) UnmarshalJSON(data []byte) error {
	type plain Car
	aux := struct {
		*plain
		FetchedAt isoTime `json:"fetched_at"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.FetchedAt = time.Time(aux.FetchedAt)
	return nil
}
