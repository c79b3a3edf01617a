// Package server exposes hide, reveal and capacity over HTTP.
//
// All endpoints take multipart/form-data:
//
//	GET  /health
//	POST /api/hide      image, message, [key]  -> PNG, X-Stego-Key header
//	POST /api/reveal    image, key             -> {"message": ...}
//	POST /api/capacity  image                  -> {"bits": ..., "bytes": ...}
//
// Keys travel as base64.  When /api/hide is called without a key a fresh one
// is generated and returned in the X-Stego-Key header.  With [WithTokens] the
// /api routes also need an "Authorization: Bearer" token.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-stegocrypt/apitoken"
	"github.com/hasbyte1/go-stegocrypt/bitstream"
	"github.com/hasbyte1/go-stegocrypt/encryption"
	"github.com/hasbyte1/go-stegocrypt/imagestore"
	"github.com/hasbyte1/go-stegocrypt/keystore"
	"github.com/hasbyte1/go-stegocrypt/logging"
	"github.com/hasbyte1/go-stegocrypt/lsb"
	"github.com/hasbyte1/go-stegocrypt/raster"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

// KeyHeader carries the base64 key in /api/hide responses.
const KeyHeader = "X-Stego-Key"

// DefaultMaxUpload bounds request bodies when [WithMaxUpload] is not given.
const DefaultMaxUpload = 32 << 20

// errBadRequest marks problems with the request itself.
var errBadRequest = errors.New("bad request")

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithMaxUpload bounds request bodies to n bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithCodecOptions configures the codec used for every request.
func WithCodecOptions(opts ...stego.Option) Option {
	return func(s *Server) { s.codecOpts = append(s.codecOpts, opts...) }
}

// WithTokens requires a bearer token from set on every /api route.  Each
// route also needs the matching ability: hide, reveal or capacity.
func WithTokens(set *apitoken.Set) Option {
	return func(s *Server) { s.tokens = set }
}

// Server serves the HTTP API.
type Server struct {
	log       logrus.FieldLogger
	codecOpts []stego.Option
	maxUpload int64
	tokens    *apitoken.Set
	router    *mux.Router
}

// New returns a server that logs to log.
func New(log logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{
		log:       log,
		maxUpload: DefaultMaxUpload,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	if s.tokens != nil {
		api.Use(apitoken.Authenticate(s.tokens))
	}
	api.Handle("/hide", s.guard(apitoken.AbilityHide, s.handleHide)).Methods("POST")
	api.Handle("/reveal", s.guard(apitoken.AbilityReveal, s.handleReveal)).Methods("POST")
	api.Handle("/capacity", s.guard(apitoken.AbilityCapacity, s.handleCapacity)).Methods("POST")
	return router
}

func (s *Server) guard(ability string, h http.HandlerFunc) http.Handler {
	if s.tokens == nil {
		return h
	}
	return apitoken.RequireAbilities(ability)(h)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

// ── Handlers ──

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	log := logging.WithOperation(s.log, stego.OpHide)

	cover, err := s.readImage(w, r)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	message := r.FormValue("message")

	var key []byte
	if encoded := r.FormValue("key"); encoded != "" {
		key, err = decodeKey(encoded)
	} else {
		key, err = keystore.Generate()
	}
	if err != nil {
		s.fail(w, log, err)
		return
	}
	defer keystore.Wipe(key)
	log = log.WithFields(logging.KeyFields(key))

	out, err := s.codec(log).Hide(message, cover, key)
	if err != nil {
		s.fail(w, log, err)
		return
	}

	var body bytes.Buffer
	if err := imagestore.Encode(&body, out, imagestore.PNG); err != nil {
		s.fail(w, log, err)
		return
	}
	w.Header().Set("Content-Type", imagestore.PNG.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="stego_image.png"`)
	w.Header().Set(KeyHeader, encryption.EncodeKey(key))
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	log := logging.WithOperation(s.log, stego.OpReveal)

	img, err := s.readImage(w, r)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	encoded := r.FormValue("key")
	if encoded == "" {
		s.fail(w, log, fmt.Errorf("%w: missing key", errBadRequest))
		return
	}
	key, err := decodeKey(encoded)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	defer keystore.Wipe(key)
	log = log.WithFields(logging.KeyFields(key))

	message, err := s.codec(log).Reveal(img, key)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	img, err := s.readImage(w, r)
	if err != nil {
		s.fail(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"bits":  lsb.Capacity(img),
		"bytes": max(stego.MaxMessageBytes(img), 0),
	})
}

// ── Helpers ──

func (s *Server) codec(log logrus.FieldLogger) *stego.Codec {
	opts := append([]stego.Option{stego.WithObserver(logging.Observer(log))}, s.codecOpts...)
	return stego.New(opts...)
}

func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (raster.Buffer, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return raster.Buffer{}, err
		}
		return raster.Buffer{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return raster.Buffer{}, fmt.Errorf("%w: missing image", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return raster.Buffer{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	buf, _, err := imagestore.Decode(bytes.NewReader(data))
	if err != nil {
		return raster.Buffer{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return buf, nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := encryption.DecodeKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(key) != encryption.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", encryption.ErrInvalidKeySize, len(key))
	}
	return key, nil
}

func (s *Server) fail(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	msg := stego.Describe(err)
	if errors.Is(err, errBadRequest) {
		msg = err.Error()
	}
	entry := log.WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Info(msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig),
		errors.Is(err, lsb.ErrInsufficientCapacity),
		errors.Is(err, bitstream.ErrCapacityOverflow):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, encryption.ErrInvalidKeySize),
		errors.Is(err, imagestore.ErrUnknownFormat),
		errors.Is(err, imagestore.ErrUnsupportedDepth),
		errors.Is(err, raster.ErrShapeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, lsb.ErrTruncatedStego),
		errors.Is(err, bitstream.ErrMalformedBitstream),
		errors.Is(err, encryption.ErrTruncatedFrame),
		errors.Is(err, encryption.ErrInvalidCiphertextLength),
		errors.Is(err, encryption.ErrDecryptionFailed),
		errors.Is(err, stego.ErrInvalidEncoding):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
