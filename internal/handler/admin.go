package handler

import (
	"strconv"

	"catalog-service/internal/imaging"
	"catalog-service/internal/store"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Admin serves the back office API. Every route sits behind the bearer
// token middleware.
type Admin struct {
	db        *gorm.DB
	store     *store.GormStore
	deriver   *imaging.Deriver
	optimizer *imaging.Optimizer
}

// NewAdmin creates the back office handlers
func NewAdmin(db *gorm.DB, deriver *imaging.Deriver, optimizer *imaging.Optimizer) *Admin {
	return &Admin{
		db:        db,
		store:     store.New(db),
		deriver:   deriver,
		optimizer: optimizer,
	}
}

// paramID parses the :id path parameter
func paramID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
