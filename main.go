package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minionworks/authrelay/config"
	"github.com/minionworks/authrelay/lib/mypublisher"
	"github.com/minionworks/authrelay/lib/mypubsub"
	"github.com/minionworks/authrelay/lib/mytime"
	"github.com/minionworks/authrelay/lib/statetoken"
	"github.com/minionworks/authrelay/services/minionauth"
	"github.com/minionworks/authrelay/services/minionauth/exchanger"
)

func main() {
	c := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %s", err)
	}

	router := mux.NewRouter()
	nower := mytime.RealNower{}

	pubsubClient, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub client: %s", err)
	}
	defer pubsubCleanup()
	publisher := mypublisher.New(pubsubClient, nower)

	sessionStore, sessionStoreCleanup, err := minionauth.NewSessionStore(c, nower, cfg.SessionRetention, cfg.SweepInterval)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()
	sessionStore.StartSweeper(c)

	if cfg.DemoMode() {
		log.Printf("No Google credentials configured: running in demo mode with simulated token exchange")
	}

	authService := minionauth.NewService(
		sessionStore,
		statetoken.RandomGenerator{},
		exchanger.New(cfg.GoogleClientID, cfg.GoogleClientSecret),
		publisher,
		minionauth.ServiceConfig{
			ClientID:      cfg.GoogleClientID,
			PublicBaseURL: cfg.PublicBaseURL,
			DefaultScopes: cfg.DefaultScopes,
		})
	err = authService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering auth endpoints: %s", err)
	}

	startWebServerBlocking(router, cfg.Port)
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
