package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/models"
)

// inboundMessageHandler runs one message through the engine synchronously and
// returns the structured result. This is the transport-independent intake:
// admin panels and simulators use it, and it doubles as a generic webhook for
// providers without a dedicated integration.
func (s *Server) inboundMessageHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tenantID := mux.Vars(r)["tenant"]

	var req struct {
		Phone string `json:"phone"`
		Name  string `json:"name,omitempty"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.inboundMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Phone == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("phone is required"))
		return
	}

	result := s.engine.Handle(r.Context(), flow.InboundMessage{
		TenantID:     tenantID,
		ContactPhone: req.Phone,
		ContactName:  req.Name,
		MessageText:  req.Text,
	})
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenant"]
	settings, err := s.store.GetTenantSettings(tenantID)
	if err != nil {
		slog.Error("Server.getSettingsHandler: lookup failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load settings"))
		return
	}
	if settings == nil {
		// Unconfigured tenants run with the engine defaults.
		settings = &models.TenantSettings{TenantID: tenantID, BotEnabled: true}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(settings))
}

func (s *Server) putSettingsHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tenantID := mux.Vars(r)["tenant"]

	var settings models.TenantSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	settings.TenantID = tenantID
	settings.UpdatedAt = time.Now()
	if err := s.store.SaveTenantSettings(settings); err != nil {
		slog.Error("Server.putSettingsHandler: save failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save settings"))
		return
	}
	slog.Info("Server.putSettingsHandler: settings saved", "tenant", tenantID, "bot_enabled", settings.BotEnabled, "menu_mode", settings.MenuMode)
	writeJSONResponse(w, http.StatusOK, models.Success(settings))
}

// resetSessionsHandler is the tenant-initiated "reset flows" operation: every
// session for the tenant is removed so all contacts start fresh.
func (s *Server) resetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenant"]
	if err := s.store.DeleteSessionsForTenant(tenantID); err != nil {
		slog.Error("Server.resetSessionsHandler: delete failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to reset sessions"))
		return
	}
	slog.Info("Server.resetSessionsHandler: sessions reset", "tenant", tenantID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Sessions reset", nil))
}

func (s *Server) getActiveSessionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := s.store.GetActiveSession(vars["tenant"], vars["phone"])
	if err != nil {
		slog.Error("Server.getActiveSessionHandler: lookup failed", "error", err, "tenant", vars["tenant"])
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load session"))
		return
	}
	if sess == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active session"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess))
}

func (s *Server) messageLogHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	entries, err := s.store.GetMessageLog(sessionID)
	if err != nil {
		slog.Error("Server.messageLogHandler: lookup failed", "error", err, "session", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load message log"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(entries))
}

func (s *Server) listMenuHandler(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenant"]
	items, err := s.store.GetMenuItems(tenantID)
	if err != nil {
		slog.Error("Server.listMenuHandler: lookup failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load menu items"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(items))
}

func (s *Server) saveMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tenantID := mux.Vars(r)["tenant"]

	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	item.TenantID = tenantID
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Key == "" || item.Title == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("key and title are required"))
		return
	}
	if !models.IsValidMenuItemType(item.Type) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid menu item type"))
		return
	}
	if err := s.store.SaveMenuItem(item); err != nil {
		slog.Error("Server.saveMenuItemHandler: save failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save menu item"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(item))
}

func (s *Server) deleteMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteMenuItem(id); err != nil {
		slog.Error("Server.deleteMenuItemHandler: delete failed", "error", err, "item", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete menu item"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Menu item deleted", nil))
}
