package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/models"
)

// Handler serves the four endpoints of the backend contract.
type Handler struct {
	Store *Store
	Log   *zap.Logger
}

// writeError mirrors the backend's error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// GetUsers returns the full user directory.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Store.Users())
}

// SendVerificationCodeRequest is the payload of /send_verification_code.
type SendVerificationCodeRequest struct {
	Correo string `json:"correo"`
}

// SendVerificationCode issues a code for the address and logs it in
// place of emailing it.
func (h *Handler) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req SendVerificationCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Correo == "" {
		writeError(w, http.StatusBadRequest, "correo requerido")
		return
	}

	code := h.Store.IssueCode(req.Correo)
	h.Log.Info("verification code issued", zap.String("correo", req.Correo), zap.String("codigo", code))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// UpUser registers a new user, checking the verification code issued
// for the address.
func (h *Handler) UpUser(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil || reg.Correo == "" || reg.Password == "" {
		writeError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	if !h.Store.CheckCode(reg.Correo, reg.Codigo) {
		writeError(w, http.StatusBadRequest, "código de verificación incorrecto")
		return
	}
	if h.Store.Exists(reg.Correo) {
		writeError(w, http.StatusConflict, "correo ya registrado")
		return
	}

	edad, _ := strconv.Atoi(reg.Edad)
	h.Store.Put(models.UserSession{
		Correo:          reg.Correo,
		Password:        reg.Password,
		Nombre:          reg.Nombre,
		Apellidos:       reg.Apellidos,
		Edad:            edad,
		Estado:          reg.Estado,
		Municipio:       reg.Municipio,
		Ciudad:          reg.Ciudad,
		CP:              reg.CP,
		TipoSangre:      reg.TipoSangre,
		DescripcionLook: reg.DescripcionLook,
		ImagenLook:      reg.ImagenLook,
	})
	h.Log.Info("user registered", zap.String("correo", reg.Correo))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// UpdateUserRequest is a partial update addressed by correo.
type UpdateUserRequest struct {
	Correo string `json:"correo"`
	models.UserPatch
}

// UpdateUser applies a partial update to an existing record.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Correo == "" {
		writeError(w, http.StatusBadRequest, "solicitud inválida")
		return
	}

	if !h.Store.Patch(req.Correo, req.UserPatch) {
		writeError(w, http.StatusNotFound, "usuario no encontrado")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
