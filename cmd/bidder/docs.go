package main

//go:generate swag init -g cmd/bidder/main.go -o docs

// @title           Search Ad Bidder API
// @version         0.1.0
// @description     Rank-targeted auto bidding, keyword expansion, and audit history for a search-ad account.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
