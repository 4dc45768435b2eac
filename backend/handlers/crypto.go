// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/crypto"
)

// CryptoHandler exposes the crypto provider as plain request/response
// endpoints for clients that cannot link the provider directly. Every
// failure comes back as a JSON body with an "error" field, keeping the
// success/failure distinction structural.
type CryptoHandler struct {
	provider crypto.Provider
}

func NewCryptoHandler(provider crypto.Provider) *CryptoHandler {
	return &CryptoHandler{provider: provider}
}

func (h *CryptoHandler) GenerateKeyPair(w http.ResponseWriter, r *http.Request) {
	keypair, err := h.provider.GenerateKeyPair(r.Context())
	if err != nil {
		h.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"keypair": keypair})
}

func (h *CryptoHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PublicKey string `json:"publicKey"`
		Data      string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PublicKey == "" || req.Data == "" {
		h.failMessage(w, "publicKey and data are required", http.StatusBadRequest)
		return
	}

	encrypted, err := h.provider.Encrypt(r.Context(), req.PublicKey, req.Data)
	if err != nil {
		h.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"encryptedData": encrypted})
}

func (h *CryptoHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PrivateKey    string `json:"privateKey"`
		EncryptedData string `json:"encryptedData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PrivateKey == "" || req.EncryptedData == "" {
		h.failMessage(w, "privateKey and encryptedData are required", http.StatusBadRequest)
		return
	}

	decrypted, err := h.provider.Decrypt(r.Context(), req.PrivateKey, req.EncryptedData)
	if err != nil {
		h.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"decryptedData": decrypted})
}

func (h *CryptoHandler) DeriveSharedSecret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PrivateKey string `json:"privateKey"`
		PublicKey  string `json:"publicKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PrivateKey == "" || req.PublicKey == "" {
		h.failMessage(w, "privateKey and publicKey are required", http.StatusBadRequest)
		return
	}

	secret, err := h.provider.DeriveSharedSecret(r.Context(), req.PrivateKey, req.PublicKey)
	if err != nil {
		h.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"sharedSecret": secret})
}

func (h *CryptoHandler) fail(w http.ResponseWriter, err error, status int) {
	log.WithError(err).Warn("crypto operation failed")
	h.failMessage(w, err.Error(), status)
}

func (h *CryptoHandler) failMessage(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
