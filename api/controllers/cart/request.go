package cart

import (
	cartdto "github.com/grocerrypoint/grocerrypoint-backend/api/controllers/cart/dto"
	"github.com/grocerrypoint/grocerrypoint-backend/api/validators"
	cartsvc "github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
)

func toProduct(payload cartdto.ProductPayload) cartsvc.Product {
	return cartsvc.Product{
		ID:       validators.SanitizeString(payload.ID, 128),
		Name:     validators.SanitizeString(payload.Name, 256),
		Price:    payload.Price,
		Discount: payload.Discount,
		Image:    validators.SanitizeString(payload.Image, 2048),
		Category: validators.SanitizeString(payload.Category, 128),
	}
}
