package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"

	"portstudio/catalog"
	"portstudio/overlay"
	"portstudio/symbol"
)

func (s *Server) listSymbols(c fiber.Ctx) error {
	entries, err := s.cat.List()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	switch fiber.Query[string](c, "status", "all") {
	case "completed":
		entries = filterEntries(entries, func(e catalog.Entry) bool { return e.Completed })
	case "pending":
		entries = filterEntries(entries, func(e catalog.Entry) bool { return !e.Completed })
	}
	return c.JSON(entries)
}

func filterEntries(entries []catalog.Entry, keep func(catalog.Entry) bool) []catalog.Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

type symbolResponse struct {
	Path        string               `json:"path"`
	Name        string               `json:"name,omitempty"`
	VW          float64              `json:"vw"`
	VH          float64              `json:"vh"`
	Ports       []symbol.PortJSON    `json:"ports"`
	Completed   bool                 `json:"completed"`
	SVG         string               `json:"svg"`
	State       *stateResponse       `json:"state,omitempty"`
	Submissions []catalog.Submission `json:"submissions,omitempty"`
}

type stateResponse struct {
	Completed   bool   `json:"completed"`
	Reviewed    bool   `json:"reviewed"`
	Approved    *bool  `json:"approved"`
	ReviewNotes string `json:"review_notes,omitempty"`
}

func (s *Server) getSymbol(c fiber.Ctx) error {
	id := c.Params("*")
	svgPath, err := s.cat.Resolve(id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	doc, meta, err := symbol.Load(svgPath)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	resp := symbolResponse{
		Path:      id,
		Name:      meta.Name(),
		VW:        doc.VW,
		VH:        doc.VH,
		Ports:     symbol.EncodePorts(doc.Ports),
		Completed: meta.Completed(),
		SVG:       string(svg),
	}
	if s.review != nil {
		if st, err := s.review.State(context.Background(), id); err == nil {
			resp.State = &stateResponse{
				Completed:   st.Completed,
				Reviewed:    st.Reviewed,
				Approved:    st.Approved,
				ReviewNotes: st.ReviewNotes,
			}
		}
		if subs, err := s.review.Submissions(context.Background(), id); err == nil {
			resp.Submissions = subs
		}
	}
	return c.JSON(resp)
}

type saveRequest struct {
	Ports     []symbol.PortJSON `json:"ports"`
	Completed *bool             `json:"completed,omitempty"`
}

func (s *Server) saveSymbol(c fiber.Ctx) error {
	id := c.Params("*")
	svgPath, err := s.cat.Resolve(id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	if _, err := os.Stat(svgPath); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}

	var req saveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	ports, err := symbol.DecodePorts(req.Ports)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	metaPath := symbol.MetaPath(svgPath)
	meta, err := symbol.ReadMeta(metaPath)
	if os.IsNotExist(err) {
		meta = symbol.NewMeta()
	} else if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	meta.SetPorts(ports)
	if req.Completed != nil {
		meta.SetCompleted(*req.Completed)
	}
	if err := meta.Write(metaPath); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"saved": id, "ports": len(ports)})
}

func (s *Server) generateDebug(c fiber.Ctx) error {
	id := c.Params("*")
	svgPath, err := s.cat.Resolve(id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	doc, _, err := symbol.Load(svgPath)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	debugPath := symbol.DebugPath(svgPath)
	if err := os.WriteFile(debugPath, overlay.Generate(svg, doc, s.palette), 0o644); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"debug": debugPath})
}

type submitRequest struct {
	SnapPoints []symbol.PortJSON `json:"snap_points"`
	Notes      string            `json:"notes"`
}

// submitPorts stores a contributed port set for review. Nothing is
// written to disk until a reviewer approves it.
func (s *Server) submitPorts(c fiber.Ctx) error {
	id := c.Params("*")
	if _, err := s.cat.Resolve(id); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}

	var req submitRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if _, err := symbol.DecodePorts(req.SnapPoints); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	snapJSON, err := json.Marshal(req.SnapPoints)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	key := c.Locals("apiKey").(catalog.APIKey)
	subID, err := s.review.AddSubmission(context.Background(), id, key.Label, string(snapJSON), req.Notes)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"submission_id": subID, "message": "Submission stored; pending review."})
}

type completeRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) markComplete(c fiber.Ctx) error {
	id := c.Params("*")
	if _, err := s.cat.Resolve(id); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	var req completeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := s.review.SetCompleted(context.Background(), id, req.Completed); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"symbol_id": id, "completed": req.Completed})
}

type reviewRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

func (s *Server) reviewSymbol(c fiber.Ctx) error {
	id := c.Params("*")
	if _, err := s.cat.Resolve(id); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "symbol not found"})
	}
	var req reviewRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := s.review.SetReview(context.Background(), id, req.Approved, req.Notes); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	verdict := "rejected"
	if req.Approved {
		verdict = "approved"
	}
	return c.JSON(fiber.Map{"symbol_id": id, "verdict": verdict})
}

func (s *Server) stats(c fiber.Ctx) error {
	st, err := s.cat.Stats()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(st)
}

func (s *Server) requireAuth(next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		if s.review == nil {
			return c.Status(http.StatusServiceUnavailable).
				JSON(fiber.Map{"error": "review store not configured"})
		}
		token, ok := strings.CutPrefix(c.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		key, err := s.review.LookupKey(context.Background(), token)
		if errors.Is(err, catalog.ErrUnknownKey) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals("apiKey", key)
		return next(c)
	}
}

func (s *Server) requireReviewer(next fiber.Handler) fiber.Handler {
	return s.requireAuth(func(c fiber.Ctx) error {
		key := c.Locals("apiKey").(catalog.APIKey)
		if key.Role != catalog.RoleReviewer {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "reviewer role required"})
		}
		return next(c)
	})
}
