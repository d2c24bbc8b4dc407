package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"catalog-service/internal/catalog"
	"catalog-service/internal/imaging"
	"catalog-service/internal/model"
	"catalog-service/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newTestStorefront(t *testing.T, st *fakeStore, mail *fakeMailer) *Storefront {
	t.Helper()
	selector := imaging.NewSelector(storage.NewLocal(t.TempDir(), "/media/"), "/static/placeholder")
	return NewStorefront(st, selector, mail, "ventas@example.com")
}

func get(e *echo.Echo, target string, accept string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func postJSON(e *echo.Echo, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestListProductsSortsAndPaginates(t *testing.T) {
	var items []model.Product
	for i := 1; i <= 14; i++ {
		items = append(items, product(uint(i), "Colchón "+string(rune('A'+i-1)), "100.00"))
	}
	items[13].Price = decimal.RequireFromString("50.00")
	st := newFakeStore(items...)
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := get(e, "/api/products?orden=precio_asc&page=1", "")
	require.NoError(t, h.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []ProductCard    `json:"items"`
		Page  catalog.PageInfo `json:"page"`
		Query string           `json:"query"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Items, catalog.PageSize)
	assert.Equal(t, uint(14), body.Items[0].ID)
	assert.Equal(t, 2, body.Page.TotalPages)
	assert.Equal(t, 14, body.Page.TotalItems)
	assert.True(t, body.Page.HasNext)

	values, err := url.ParseQuery(body.Query)
	require.NoError(t, err)
	assert.Equal(t, "precio_asc", values.Get(catalog.ParamSort))
}

func TestListProductsPageOutOfRange(t *testing.T) {
	st := newFakeStore(product(1, "Uno", "10"), product(2, "Dos", "20"))
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := get(e, "/api/products?page=99", "")
	require.NoError(t, h.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []ProductCard    `json:"items"`
		Page  catalog.PageInfo `json:"page"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Page.Number)
	assert.Len(t, body.Items, 2)
}

func TestListProductsUsesRenditions(t *testing.T) {
	p := product(1, "Uno", "10")
	p.ImageMain = "productos/1_principal.jpg"
	st := newFakeStore(p)
	st.renditions = []model.ImageRendition{
		{ProductID: 1, Slot: model.SlotMain, Name: model.RenditionCard, Format: model.FormatModern, URL: "https://cdn.test/card.webp", Width: 600, Height: 600},
		{ProductID: 1, Slot: model.SlotMain, Name: model.RenditionCard, Format: model.FormatLegacy, URL: "https://cdn.test/card.jpg", Width: 600, Height: 600},
	}
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := get(e, "/api/products", "image/avif,image/webp,*/*")
	require.NoError(t, h.ListProducts(c))

	var body struct {
		Items []ProductCard `json:"items"`
		WebP  bool          `json:"webp"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Items, 1)
	assert.True(t, body.WebP)
	assert.Equal(t, imaging.OriginRendition, body.Items[0].Image.Origin)
	assert.Equal(t, "https://cdn.test/card.webp", body.Items[0].Image.Modern)
	assert.Equal(t, "https://cdn.test/card.jpg", body.Items[0].Image.Fallback)
}

func TestProductDetail(t *testing.T) {
	main := product(1, "Principal", "500")
	main.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("250"))
	sibling := product(2, "Hermano", "300")
	st := newFakeStore(main, sibling)
	pid := uint(1)
	st.testimonials = []model.Testimonial{{ID: 1, Author: "Ana", Comment: "Muy bueno", Rating: 5, ProductID: &pid, Active: true}}
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := get(e, "/api/products/principal", "")
	c.SetParamNames("slug")
	c.SetParamValues("principal")
	require.NoError(t, h.ProductDetail(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Product      ProductDetail       `json:"product"`
		Related      []ProductCard       `json:"related"`
		Testimonials []model.Testimonial `json:"testimonials"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "/producto/principal/", body.Product.URL)
	assert.Equal(t, int64(50), body.Product.DiscountPercent)
	assert.Equal(t, "250", body.Product.FinalPrice.String())
	assert.Equal(t, imaging.OriginPlaceholder, body.Product.Image.Origin)
	require.Len(t, body.Related, 1)
	assert.Equal(t, uint(2), body.Related[0].ID)
	assert.Len(t, body.Testimonials, 1)
}

func TestProductDetailNotFound(t *testing.T) {
	inactive := product(1, "Oculto", "10")
	inactive.Active = false
	e := newTestEcho()
	h := newTestStorefront(t, newFakeStore(inactive), &fakeMailer{})

	c, rec := get(e, "/api/products/oculto", "")
	c.SetParamNames("slug")
	c.SetParamValues("oculto")
	require.NoError(t, h.ProductDetail(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuickSearch(t *testing.T) {
	st := newFakeStore(
		product(1, "Ortopédico Plus", "900"),
		product(2, "Ortopédico Basic", "400"),
		product(3, "Memory Foam", "700"),
	)
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	t.Run("short query", func(t *testing.T) {
		c, rec := get(e, "/api/search?q=+o+", "")
		require.NoError(t, h.QuickSearch(c))
		assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
		assert.Equal(t, 0, st.listCalls)
	})

	t.Run("matches", func(t *testing.T) {
		c, rec := get(e, "/api/search?q=ORTOP", "")
		require.NoError(t, h.QuickSearch(c))

		var body struct {
			Results []SearchResult `json:"results"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Results, 2)
		assert.Equal(t, "Ortopédico Basic", body.Results[0].Name)
		assert.Equal(t, "400.00", body.Results[0].Price)
		assert.Equal(t, "/producto/ortopédico-basic/", body.Results[0].URL)
		assert.Equal(t, "/static/placeholder.jpg", body.Results[0].Image)
	})
}

func TestHomeAndAbout(t *testing.T) {
	featured := product(1, "Destacado", "100")
	featured.Featured = true
	st := newFakeStore(featured, product(2, "Normal", "50"))
	st.categories = []model.Category{{ID: 1, Name: "Ortopédicos", Slug: "ortopedicos", Active: true}}
	st.testimonials = []model.Testimonial{{ID: 1, Author: "Luis", Comment: "Excelente", Rating: 4, Active: true}}
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := get(e, "/api/home", "")
	require.NoError(t, h.Home(c))
	var home struct {
		Featured     []ProductCard       `json:"featured"`
		Testimonials []model.Testimonial `json:"testimonials"`
		Categories   []model.Category    `json:"categories"`
	}
	decode(t, rec, &home)
	require.Len(t, home.Featured, 1)
	assert.Equal(t, "Destacado", home.Featured[0].Name)
	assert.Len(t, home.Testimonials, 1)
	assert.Len(t, home.Categories, 1)

	c, rec = get(e, "/api/about", "")
	require.NoError(t, h.About(c))
	assert.JSONEq(t, `{"stats":{"productos_total":2,"categorias_total":1,"testimonios_total":1}}`, rec.Body.String())
}

const validContact = `{"name":"Ana <b>Pérez</b>","email":"ana@example.com","subject":"cotizacion","message":"Quiero una cotización","consent":true}`

func TestContact(t *testing.T) {
	t.Run("without consent is never stored", func(t *testing.T) {
		st := newFakeStore()
		mail := &fakeMailer{}
		e := newTestEcho()
		h := newTestStorefront(t, st, mail)

		body := strings.Replace(validContact, `"consent":true`, `"consent":false`, 1)
		c, rec := postJSON(e, "/api/contact", body)
		require.NoError(t, h.Contact(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		decode(t, rec, &resp)
		assert.Contains(t, resp.Fields, "consent")
		assert.Empty(t, st.contacts)
		assert.Empty(t, mail.sent)
	})

	t.Run("field errors", func(t *testing.T) {
		st := newFakeStore()
		e := newTestEcho()
		h := newTestStorefront(t, st, &fakeMailer{})

		c, rec := postJSON(e, "/api/contact", `{"name":"","email":"nope","subject":"otra","message":"hola","consent":true}`)
		require.NoError(t, h.Contact(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		decode(t, rec, &resp)
		assert.Contains(t, resp.Fields, "name")
		assert.Contains(t, resp.Fields, "email")
		assert.Contains(t, resp.Fields, "subject")
		assert.NotContains(t, resp.Fields, "consent")
		assert.Empty(t, st.contacts)
	})

	t.Run("stored and notified", func(t *testing.T) {
		st := newFakeStore()
		mail := &fakeMailer{}
		e := newTestEcho()
		h := newTestStorefront(t, st, mail)

		c, rec := postJSON(e, "/api/contact", validContact)
		require.NoError(t, h.Contact(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, st.contacts, 1)
		assert.Equal(t, "Ana Pérez", st.contacts[0].Name)
		assert.Equal(t, model.SubjectQuote, st.contacts[0].Subject)

		require.Len(t, mail.sent, 1)
		assert.Equal(t, []string{"ventas@example.com"}, mail.sent[0].To)
		assert.Equal(t, "ana@example.com", mail.sent[0].ReplyTo)
		assert.Contains(t, mail.sent[0].Subject, "Solicitar Cotización")
	})

	t.Run("text is stored as typed", func(t *testing.T) {
		st := newFakeStore()
		mail := &fakeMailer{}
		e := newTestEcho()
		h := newTestStorefront(t, st, mail)

		body := `{"name":"Luz O'Neil","email":"luz@example.com","subject":"consulta_producto","message":"¿Hay algo < 500000 & con envío?","consent":true}`
		c, rec := postJSON(e, "/api/contact", body)
		require.NoError(t, h.Contact(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, st.contacts, 1)
		assert.Equal(t, "Luz O'Neil", st.contacts[0].Name)
		assert.Equal(t, "¿Hay algo < 500000 & con envío?", st.contacts[0].Message)

		require.Len(t, mail.sent, 1)
		assert.Contains(t, mail.sent[0].Body, "¿Hay algo < 500000 & con envío?")
		assert.NotContains(t, mail.sent[0].Body, "&amp;")
	})

	t.Run("mail failure does not fail the submission", func(t *testing.T) {
		st := newFakeStore()
		e := newTestEcho()
		h := newTestStorefront(t, st, &fakeMailer{err: errors.New("smtp down")})

		c, rec := postJSON(e, "/api/contact", validContact)
		require.NoError(t, h.Contact(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, st.contacts, 1)
	})
}

func TestNewsletter(t *testing.T) {
	st := newFakeStore()
	e := newTestEcho()
	h := newTestStorefront(t, st, &fakeMailer{})

	c, rec := postJSON(e, "/api/newsletter", `{"email":"ana@example.com"}`)
	require.NoError(t, h.Newsletter(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subscribed"`)

	c, rec = postJSON(e, "/api/newsletter", `{"email":" ana@example.com "}`)
	require.NoError(t, h.Newsletter(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"already_subscribed"`)
	assert.Len(t, st.subscribers, 1)

	c, rec = postJSON(e, "/api/newsletter", `{"email":"not-an-email"}`)
	require.NoError(t, h.Newsletter(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
