package handlers

import (
	"log"

	"showtrack/internal/models"
	"showtrack/internal/services"
	"showtrack/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ShowHandler handles HTTP requests for shows.
type ShowHandler struct {
	service *services.ShowService
}

// NewShowHandler creates a new ShowHandler.
func NewShowHandler(service *services.ShowService) *ShowHandler {
	return &ShowHandler{
		service: service,
	}
}

// RegisterRoutes registers the show routes. The guid constraint makes the router
// answer 404 for malformed identifiers before a handler runs.
func (h *ShowHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleList)
	router.Get("/add", h.HandleAddForm)
	router.Post("/add", h.HandleAdd)
	router.Get("/delete/:id<guid>", h.HandleDelete)
	router.Get("/update/:id<guid>", h.HandleUpdateForm)
	router.Post("/update/:id<guid>", h.HandleUpdate)
}

// HandleList renders the active shows ordered by release date.
func (h *ShowHandler) HandleList(c *fiber.Ctx) error {
	shows, err := h.service.ListShows(c.UserContext())
	if err != nil {
		return respondError(c, err, "listing the shows")
	}
	return c.Render("index", fiber.Map{
		"Title": "Shows",
		"Shows": shows,
	}, views.Layout)
}

// HandleAddForm renders an empty show form.
func (h *ShowHandler) HandleAddForm(c *fiber.Ctx) error {
	return c.Render("add", fiber.Map{"Title": "Add a show"}, views.Layout)
}

// HandleAdd creates a show from the submitted form.
func (h *ShowHandler) HandleAdd(c *fiber.Ctx) error {
	var form models.ShowForm
	if err := c.BodyParser(&form); err != nil {
		return respondBadForm(c, err)
	}

	show, err := h.service.CreateShow(c.UserContext(), form)
	if err != nil {
		return respondError(c, err, "inserting the show")
	}
	log.Printf("Created show %s (%s)", show.ID, show.Title)
	return c.Redirect("/")
}

// HandleDelete soft-deletes a show.
func (h *ShowHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := showID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteShow(c.UserContext(), id); err != nil {
		return respondError(c, err, "deleting the show")
	}
	log.Printf("Deleted show %s", id)
	return c.Redirect("/")
}

// HandleUpdateForm renders the form pre-filled with an active show.
func (h *ShowHandler) HandleUpdateForm(c *fiber.Ctx) error {
	id, err := showID(c)
	if err != nil {
		return err
	}

	show, err := h.service.GetShow(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "loading the show")
	}
	return c.Render("update", fiber.Map{
		"Title": "Update " + show.Title,
		"Show":  show,
	}, views.Layout)
}

// HandleUpdate overwrites the fields of an active show from the submitted form.
func (h *ShowHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := showID(c)
	if err != nil {
		return err
	}

	var form models.ShowForm
	if err := c.BodyParser(&form); err != nil {
		return respondBadForm(c, err)
	}

	if _, err := h.service.UpdateShow(c.UserContext(), id, form); err != nil {
		return respondError(c, err, "updating the show")
	}
	log.Printf("Updated show %s", id)
	return c.Redirect("/")
}

func showID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.ErrNotFound
	}
	return id, nil
}
