package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Drives one enrichment batch through the running server's API, for cron
// jobs and manual runs.

type statsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		Pending    int64 `json:"pending"`
		Successful int64 `json:"successful"`
		Failed     int64 `json:"failed"`
		Total      int64 `json:"total"`
	} `json:"stats"`
}

type processResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Processed  int    `json:"processed"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	_ = godotenv.Load()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 2 * time.Minute}

	var stats statsResponse
	if err := getJSON(client, baseURL+"/api/metadata", &stats); err != nil {
		logger.WithError(err).Fatal("Fetching metadata stats failed")
	}
	logger.WithFields(logrus.Fields{
		"pending":    stats.Stats.Pending,
		"successful": stats.Stats.Successful,
		"failed":     stats.Stats.Failed,
		"total":      stats.Stats.Total,
	}).Info("Metadata stats")

	if stats.Stats.Pending == 0 {
		logger.Info("No pending URLs, nothing to do")
		return
	}

	var result processResponse
	if err := postJSON(client, baseURL+"/api/metadata", &result); err != nil {
		logger.WithError(err).Fatal("Processing metadata failed")
	}
	logger.WithFields(logrus.Fields{
		"processed":  result.Processed,
		"successful": result.Successful,
		"failed":     result.Failed,
	}).Info(result.Message)
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func postJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Post(url, "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
