package history

import (
	"errors"
	"fmt"
	"strconv"

	"shared-save/core/logger"
	"shared-save/core/remote"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VersionHeader carries the version of a downloaded snapshot.
const VersionHeader = "X-World-Version"

// Handler handles HTTP requests for world history.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/worlds")
	group.Get("/", h.HandleWorlds)
	group.Get("/:world", h.HandleHead)
	group.Get("/:world/history", h.HandleHistory)
	group.Get("/:world/snapshot", h.HandleSnapshot)
	group.Get("/:world/crafts", h.HandleCrafts)
}

// HandleWorlds lists published worlds.
func (h *Handler) HandleWorlds(c *fiber.Ctx) error {
	heads, err := h.service.Worlds(c.Context())
	if err != nil {
		return h.fail(c, "List worlds failed", err)
	}
	return c.JSON(heads)
}

// HandleHead returns the head of a world.
func (h *Handler) HandleHead(c *fiber.Ctx) error {
	head, err := h.service.Head(c.Context(), c.Params("world"))
	if err != nil {
		return h.fail(c, "Head lookup failed", err)
	}
	return c.JSON(head)
}

// HandleHistory returns the publish history of a world.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	world := c.Params("world")
	versions, err := h.service.History(c.Context(), world, int(limit))
	if err != nil {
		return h.fail(c, "History lookup failed", err)
	}
	return c.JSON(fiber.Map{
		"world_id": world,
		"versions": versions,
	})
}

// HandleSnapshot downloads a snapshot archive.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	version, err := queryInt(c, "version")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	world := c.Params("world")
	data, row, err := h.service.Snapshot(c.Context(), world, version)
	if err != nil {
		return h.fail(c, "Snapshot download failed", err)
	}

	c.Set(fiber.HeaderContentType, remote.SnapshotContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-v%d.sfsw"`, world, row.Version))
	c.Set(VersionHeader, strconv.FormatInt(row.Version, 10))
	return c.Send(data)
}

// HandleCrafts lists the crafts of a snapshot.
func (h *Handler) HandleCrafts(c *fiber.Ctx) error {
	version, err := queryInt(c, "version")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	world := c.Params("world")
	crafts, row, err := h.service.Crafts(c.Context(), world, version)
	if err != nil {
		return h.fail(c, "Craft listing failed", err)
	}
	return c.JSON(fiber.Map{
		"world_id": world,
		"version":  row.Version,
		"crafts":   crafts,
	})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func queryInt(c *fiber.Ctx, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
