package minionauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/minionworks/authrelay/lib/mycontext"
	"github.com/minionworks/authrelay/lib/myerrors"
	"github.com/minionworks/authrelay/lib/myhttp"
	"github.com/minionworks/authrelay/lib/mylog"
	"github.com/minionworks/authrelay/lib/mypublisher"
	"github.com/minionworks/authrelay/lib/statetoken"
	"github.com/minionworks/authrelay/services/minionauth/exchanger"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(sessionStore *SessionStore, tokens statetoken.Generator, exch exchanger.Exchanger, pub mypublisher.Publisher, cfg ServiceConfig) *webService {
	return &webService{
		service: newService(sessionStore, tokens, exch, pub, cfg),
		logger:  mylog.New("minionauthweb"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/auth/init", s.initPage()).Methods("POST")
	router.HandleFunc("/auth/callback", s.callbackPage()).Methods("POST")
	router.HandleFunc("/auth/callback", s.pollPage()).Methods("GET")
	router.HandleFunc("/auth/notify", s.notifyPage()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return fmt.Errorf("error creating topics: %s", err)
	}

	return nil
}

type initPageResponse struct {
	Success   bool   `json:"success"`
	State     string `json:"state"`
	AuthURL   string `json:"authUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

func (s *webService) initPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := InitRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		result, err := s.service.init(c, req, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, initPageResponse{
			Success:   true,
			State:     result.State,
			AuthURL:   result.AuthURL,
			ExpiresIn: result.ExpiresIn,
		})
	}
}

type callbackPageRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type callbackPageResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := callbackPageRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		result, err := s.service.callback(c, req.Code, req.State, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, callbackPageResponse{
			Success:      true,
			Message:      "Account connected",
			Email:        result.UserInfo.Email,
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
			ExpiresIn:    result.Tokens.ExpiresIn,
		})
	}
}

func (s *webService) notifyPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := NotifyRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		err = s.service.notify(c, req)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Success: true,
			Message: "Notification received",
		})
	}
}

type pollPageQuery struct {
	State string `form:"state"`
}

type pollPageResponse struct {
	Status       Status              `json:"status"`
	UserInfo     *exchanger.UserInfo `json:"userInfo,omitempty"`
	Error        string              `json:"error,omitempty"`
	AccessToken  string              `json:"access_token,omitempty"`
	RefreshToken string              `json:"refresh_token,omitempty"`
	ExpiresIn    int                 `json:"expires_in,omitempty"`
}

var queryDecoder = form.NewDecoder()

func (s *webService) pollPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		query := pollPageQuery{}
		err := queryDecoder.Decode(&query, r.URL.Query())
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing query: %s", err)))
			return
		}

		result, err := s.service.poll(c, query.State)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		resp := pollPageResponse{
			Status:   result.Status,
			UserInfo: result.UserInfo,
			Error:    result.Error,
		}
		if result.Status == StatusCompleted && result.Tokens != nil {
			resp.AccessToken = result.Tokens.AccessToken
			resp.RefreshToken = result.Tokens.RefreshToken
			resp.ExpiresIn = result.Tokens.ExpiresIn
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}
