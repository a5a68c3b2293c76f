package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

func TestHTTPVoteSwitching(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB, "voter")
	adminToken := tokenFor(t, "root", true)

	// 1. Create proposal
	now := time.Now().UTC()
	body, _ := json.Marshal(map[string]any{
		"title":          "Switch test",
		"voting_options": []string{"Yes", "No"},
		"start_time":     now.Add(-time.Minute),
		"end_time":       now.Add(time.Hour),
	})
	req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/api/proposals", bytes.NewReader(body))
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: adminToken})
	resp, err := app.Server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var proposal domain.Proposal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&proposal))
	resp.Body.Close()

	// 2. Vote twice
	for _, choice := range []string{"Yes", "No"} {
		voteBody, _ := json.Marshal(map[string]string{"choice": choice})
		req, err = http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/proposals/%s/votes", app.Server.URL, proposal.ID), bytes.NewReader(voteBody))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		resp, err = app.Server.Client().Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// 3. Tally reflects the last choice only
	req, err = http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/proposals/%s/tally", app.Server.URL, proposal.ID), nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	resp, err = app.Server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tally domain.TallyResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tally))
	resp.Body.Close()

	assert.Equal(t, map[string]int64{"No": 1}, tally.Results)
	assert.Equal(t, 100.0, tally.Percentages["No"])
}
