package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"drively/internal/app/dto"
	domaincars "drively/internal/domain/cars"
	"drively/internal/infra/storage/s3"
)

// CarsHandler serves the rental catalog. Image keys are resolved to public
// URLs through the object store on the way out.
type CarsHandler struct {
	Cars   domaincars.Repository
	Images s3.ImageResolver
	Logger *slog.Logger
}

type carResponse struct {
	ID           string       `json:"id"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	DailyRate    dto.MoneyDTO `json:"daily_rate"`
	HomeLocation string       `json:"home_location"`
	ImageURL     string       `json:"image_url,omitempty"`
	Available    bool         `json:"available"`
}

func (h CarsHandler) List(c *gin.Context) {
	all, err := h.Cars.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}
	out := make([]carResponse, 0, len(all))
	for _, car := range all {
		out = append(out, h.toResponse(c, car))
	}
	c.JSON(http.StatusOK, gin.H{"cars": out})
}

func (h CarsHandler) Get(c *gin.Context) {
	car, err := h.Cars.ByID(c.Request.Context(), domaincars.CarID(c.Param("id")))
	if err != nil {
		if errors.Is(err, domaincars.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": h.toResponse(c, car)})
}

func (h CarsHandler) toResponse(c *gin.Context, car *domaincars.Car) carResponse {
	imageURL := car.ImageURL
	if imageURL == "" && car.ImageKey != "" && h.Images != nil {
		resolved, err := h.Images.Resolve(c.Request.Context(), car.ImageKey)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Warn("image resolve failed", "car_id", car.ID, "error", err)
			}
		} else {
			imageURL = resolved
		}
	}
	return carResponse{
		ID:           string(car.ID),
		Brand:        car.Brand,
		Model:        car.Model,
		Year:         car.Year,
		DailyRate:    dto.MapMoney(car.DailyRate),
		HomeLocation: car.HomeLocation,
		ImageURL:     imageURL,
		Available:    car.Available,
	}
}

var _ CarsHTTP = CarsHandler{}
