package httpapi

import (
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

type errorBody struct {
	Error string `json:"error"`
}

type lastUpdatedResponse struct {
	UpdatedAt time.Time `json:"updatedAt"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type rateRequest struct {
	RubPerUsdt *float64 `json:"rubPerUsdt" validate:"required"`
}

type itemsResponse struct {
	Items     []model.Bet `json:"items"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
