package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func getJSON(url string, out interface{}) error {
	resp, err := httpClient().Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(url string, payload interface{}, out interface{}) error {
	body, _ := json.Marshal(payload)
	resp, err := httpClient().Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func deleteJSON(url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readHTTPError(resp *http.Response) error {
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if msg, ok := body["error"]; ok && msg != "" {
			return fmt.Errorf("http %d: %s", resp.StatusCode, msg)
		}
	}
	return fmt.Errorf("http %d", resp.StatusCode)
}
