package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agenttrace/docstore/internal/domain"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/query"
	"github.com/agenttrace/docstore/internal/repository/mongo"
	"github.com/agenttrace/docstore/internal/validator"
)

// DocumentRepository is the schemaless repository the document routes run on
type DocumentRepository = mongo.DocumentRepository[domain.Document]

// DocumentsHandler handles document endpoints
type DocumentsHandler struct {
	repo *DocumentRepository
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(repo *DocumentRepository) *DocumentsHandler {
	return &DocumentsHandler{repo: repo}
}

// collection returns the repository bound to the :collection path parameter
func (h *DocumentsHandler) collection(c *fiber.Ctx) (*DocumentRepository, error) {
	name := c.Params("collection")
	if err := validator.ValidateCollectionName(name); err != nil {
		return nil, apperrors.Validation(mongo.MsgInvalidCollName).
			WithDetail("collection", name).
			WithError(err)
	}
	return h.repo.In(name), nil
}

// filter parses the q query parameter. An absent q matches every document.
func filter(c *fiber.Ctx) (any, error) {
	q := c.Query("q")
	if q == "" {
		return query.All(), nil
	}
	return query.Parse(q)
}

// List handles GET /v1/collections/:collection/documents
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	repo, err := h.collection(c)
	if err != nil {
		return errorResponse(c, err)
	}
	f, err := filter(c)
	if err != nil {
		return errorResponse(c, err)
	}

	docs, err := repo.FindJSON(c.UserContext(), f, ParsePage(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return sendJSON(c, fiber.StatusOK, docs)
}

// FindOne handles GET /v1/collections/:collection/documents/one
func (h *DocumentsHandler) FindOne(c *fiber.Ctx) error {
	repo, err := h.collection(c)
	if err != nil {
		return errorResponse(c, err)
	}
	f, err := filter(c)
	if err != nil {
		return errorResponse(c, err)
	}

	doc, err := repo.FindOneJSON(c.UserContext(), f)
	if err != nil {
		return errorResponse(c, err)
	}
	if doc == "null" {
		return errorResponse(c, apperrors.NoMatch())
	}
	return sendJSON(c, fiber.StatusOK, doc)
}

// Get handles GET /v1/collections/:collection/documents/:id
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	repo, err := h.collection(c)
	if err != nil {
		return errorResponse(c, err)
	}

	doc, err := repo.LoadJSON(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return sendJSON(c, fiber.StatusOK, doc)
}

// Save handles POST /v1/collections/:collection/documents. The body is a
// JSON or shell-syntax document; an existing document with the same _id is
// replaced.
func (h *DocumentsHandler) Save(c *fiber.Ctx) error {
	repo, err := h.collection(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := repo.SaveFromJSON(c.UserContext(), string(c.Body()))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// Delete handles DELETE /v1/collections/:collection/documents/:id
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	repo, err := h.collection(c)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := repo.DeleteByID(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NewID handles POST /v1/ids
func (h *DocumentsHandler) NewID(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"id": h.repo.GenerateID()})
}

// RegisterRoutes registers document routes on router
func (h *DocumentsHandler) RegisterRoutes(router fiber.Router) {
	docs := router.Group("/collections/:collection/documents")
	docs.Get("", h.List)
	docs.Get("/one", h.FindOne)
	docs.Get("/:id", h.Get)
	docs.Post("", h.Save)
	docs.Delete("/:id", h.Delete)

	router.Post("/ids", h.NewID)
}
