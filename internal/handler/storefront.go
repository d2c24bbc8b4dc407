package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/imaging"
	"catalog-service/internal/model"
	"catalog-service/internal/store"
	"catalog-service/pkg/logger"
	"catalog-service/pkg/mailer"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	homeFeaturedLimit      = 8
	homeTestimonialLimit   = 6
	relatedLimit           = 4
	detailTestimonialLimit = 3
)

// Storefront serves the public catalog API
type Storefront struct {
	store    store.Store
	selector *imaging.Selector
	mail     mailer.Sender
	notifyTo string
}

// NewStorefront creates the public handlers. notifyTo receives contact
// notifications; an empty address disables them.
func NewStorefront(st store.Store, selector *imaging.Selector, mail mailer.Sender, notifyTo string) *Storefront {
	return &Storefront{store: st, selector: selector, mail: mail, notifyTo: notifyTo}
}

func acceptsWebP(c echo.Context) bool {
	return imaging.AcceptsWebP(c.Request().Header.Get(echo.HeaderAccept))
}

// Home returns the featured products, latest testimonials and categories
func (h *Storefront) Home(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	featured, err := h.store.FeaturedProducts(ctx, homeFeaturedLimit)
	if err != nil {
		log.Error("Failed to load featured products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load home page"})
	}
	testimonials, err := h.store.Testimonials(ctx, nil, homeTestimonialLimit)
	if err != nil {
		log.Error("Failed to load testimonials", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load home page"})
	}
	categories, err := h.store.ActiveCategories(ctx)
	if err != nil {
		log.Error("Failed to load categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load home page"})
	}
	rows, err := h.store.Renditions(ctx, productIDs(featured)...)
	if err != nil {
		log.Warn("Failed to load renditions, serving source images", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"featured":     h.cards(featured, rows, model.RenditionCard),
		"testimonials": testimonials,
		"categories":   categories,
		"webp":         acceptsWebP(c),
	})
}

// ListProducts filters, sorts and paginates the active catalog
func (h *Storefront) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	params := catalog.ParseParams(c.QueryParams())
	items, err := h.store.ActiveProducts(ctx)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	result := catalog.Query(items, params)
	prometheus.RecordListingQuery(string(params.Sort))

	rows, err := h.store.Renditions(ctx, productIDs(result.Items)...)
	if err != nil {
		log.Warn("Failed to load renditions, serving source images", zap.Error(err))
	}

	log.Info("Products listed",
		zap.String("category", params.Category),
		zap.String("search", params.Search),
		zap.String("sort", string(params.Sort)),
		zap.Int("page", result.Page.Number),
		zap.Int("total", result.Page.TotalItems))

	return c.JSON(http.StatusOK, echo.Map{
		"items":   h.cards(result.Items, rows, model.RenditionCard),
		"page":    result.Page,
		"options": result.Options,
		"current": result.Current,
		"query":   params.Values().Encode(),
		"webp":    acceptsWebP(c),
	})
}

// ProductDetail returns one active product with related products and testimonials
func (h *Storefront) ProductDetail(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	slug := c.Param("slug")

	p, err := h.store.ProductBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info("Product not found", zap.String("slug", slug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		log.Error("Failed to load product", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve product"})
	}

	related, err := h.store.RelatedProducts(ctx, p, relatedLimit)
	if err != nil {
		log.Warn("Failed to load related products", zap.Error(err))
	}
	testimonials, err := h.store.Testimonials(ctx, &p.ID, detailTestimonialLimit)
	if err != nil {
		log.Warn("Failed to load product testimonials", zap.Error(err))
	}
	rows, err := h.store.Renditions(ctx, append([]uint{p.ID}, productIDs(related)...)...)
	if err != nil {
		log.Warn("Failed to load renditions, serving source images", zap.Error(err))
	}
	own := groupRenditions(rows)[p.ID]

	prometheus.RecordProductView(p.Slug, p.Category.Slug)

	detail := ProductDetail{
		ProductCard:   newProductCard(p, h.selector.Select(p, own, model.RenditionDetail)),
		Description:   p.Description,
		HeightCM:      p.HeightCM,
		Material:      p.Material,
		WarrantyYears: p.WarrantyYears,
		WeightKG:      p.WeightKG,
		Stock:         p.Stock,
		Savings:       p.Savings(),
		Images:        h.selector.PictureSet(p, own),
		Gallery:       h.selector.Gallery(p, own),
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product":      detail,
		"related":      h.cards(related, rows, model.RenditionThumbnail),
		"testimonials": testimonials,
		"webp":         acceptsWebP(c),
	})
}

// SearchResult is one quick search hit
type SearchResult struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

// QuickSearch answers the search box with at most five matches
func (h *Storefront) QuickSearch(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	q := c.QueryParam("q")

	results := []SearchResult{}
	if len([]rune(strings.TrimSpace(q))) < catalog.MinSearchLength {
		return c.JSON(http.StatusOK, echo.Map{"results": results})
	}

	items, err := h.store.ActiveProducts(ctx)
	if err != nil {
		log.Error("Failed to search products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Search failed"})
	}
	matches := catalog.Search(items, q, catalog.QuickSearchLimit)

	rows, err := h.store.Renditions(ctx, productIDs(matches)...)
	if err != nil {
		log.Warn("Failed to load renditions, serving source images", zap.Error(err))
	}
	byProduct := groupRenditions(rows)
	webp := acceptsWebP(c)
	for i := range matches {
		p := &matches[i]
		results = append(results, SearchResult{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.FinalPrice().StringFixed(2),
			Image: h.selector.Select(p, byProduct[p.ID], model.RenditionThumbnail).Best(webp),
			URL:   p.URL(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// About returns the public company counters
func (h *Storefront) About(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		logger.FromContext(c).Error("Failed to compute stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// ContactRequest is the contact form payload
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" form:"phone" validate:"max=20"`
	City    string `json:"city" form:"city" validate:"max=100"`
	Subject string `json:"subject" form:"subject" validate:"required,oneof=consulta_producto cotizacion garantia envio soporte otro"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
	Consent bool   `json:"consent" form:"consent"`
}

// Contact stores a contact message and notifies the shop. A failed
// notification is logged and does not fail the submission.
func (h *Storefront) Contact(c echo.Context) error {
	log := logger.FromContext(c)

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid contact payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	req.Name = sanitizePlain(req.Name)
	req.Phone = sanitizePlain(req.Phone)
	req.City = sanitizePlain(req.City)
	req.Message = sanitizePlain(req.Message)
	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	if err := c.Validate(&req); err != nil {
		fields = fieldErrors(err)
	}
	if !req.Consent {
		fields["consent"] = "Debes aceptar el tratamiento de datos personales."
	}
	if len(fields) > 0 {
		prometheus.RecordContactSubmission("invalid")
		log.Info("Contact form rejected", zap.Int("errors", len(fields)))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "Por favor corrige los errores en el formulario.",
			"fields": fields,
		})
	}

	msg := &model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		City:    req.City,
		Subject: model.Subject(req.Subject),
		Message: req.Message,
		Consent: true,
	}
	if err := h.store.CreateContact(c.Request().Context(), msg); err != nil {
		prometheus.RecordContactSubmission("error")
		log.Error("Failed to save contact message", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to send message"})
	}
	prometheus.RecordContactSubmission("stored")
	log.Info("Contact message stored", zap.Uint("contact_id", msg.ID), zap.String("subject", req.Subject))

	h.notifyContact(c.Request().Context(), log, msg)

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "sent",
		"message": "¡Mensaje enviado exitosamente! Te contactaremos pronto.",
	})
}

func (h *Storefront) notifyContact(ctx context.Context, log *zap.Logger, msg *model.ContactMessage) {
	if h.mail == nil || h.notifyTo == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	subject := msg.Subject.Label()
	err := h.mail.Send(ctx, mailer.Message{
		To:      []string{h.notifyTo},
		ReplyTo: msg.Email,
		Subject: "Nuevo mensaje de contacto - " + subject,
		Body: fmt.Sprintf("Nuevo mensaje de contacto recibido:\n\nNombre: %s\nEmail: %s\nTeléfono: %s\nCiudad: %s\nAsunto: %s\n\nMensaje:\n%s\n",
			msg.Name, msg.Email, msg.Phone, msg.City, subject, msg.Message),
	})
	if err != nil {
		log.Warn("Failed to send contact notification", zap.Uint("contact_id", msg.ID), zap.Error(err))
	}
}

// NewsletterRequest is the newsletter signup payload
type NewsletterRequest struct {
	Email string `json:"email" form:"email" validate:"required,email,max=254"`
	Name  string `json:"name" form:"name" validate:"max=100"`
}

// Newsletter subscribes an email. An existing subscription is reported as
// already subscribed with 200.
func (h *Storefront) Newsletter(c echo.Context) error {
	log := logger.FromContext(c)

	var req NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		prometheus.RecordNewsletterSignup("invalid")
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "Por favor verifica el email ingresado.",
			"fields": fieldErrors(err),
		})
	}

	sub := &model.NewsletterSubscription{Email: req.Email, Name: sanitizePlain(req.Name), Active: true}
	err := h.store.Subscribe(c.Request().Context(), sub)
	switch {
	case errors.Is(err, store.ErrAlreadySubscribed):
		prometheus.RecordNewsletterSignup("duplicate")
		log.Info("Newsletter email already subscribed")
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "already_subscribed",
			"message": "Este email ya está suscrito a nuestro newsletter.",
		})
	case err != nil:
		prometheus.RecordNewsletterSignup("error")
		log.Error("Failed to subscribe", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to subscribe"})
	}

	prometheus.RecordNewsletterSignup("subscribed")
	log.Info("Newsletter subscription created", zap.Uint("subscription_id", sub.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "subscribed",
		"message": "¡Gracias por suscribirte a nuestro newsletter!",
	})
}
