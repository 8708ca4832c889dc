package cmd

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/yuri/internal"
	"github.com/iksnae/yuri/testutil"
)

func registerPredictions(labels map[string]string) {
	httpmock.RegisterResponder(http.MethodPost, testNLPEndpoint+"/v1/predict",
		func(req *http.Request) (*http.Response, error) {
			var body internal.PredictRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, internal.Prediction{Label: labels[body.Text]})
		})
}

func TestTestCommandSingleText(t *testing.T) {
	activateNLPMock(t)
	registerPredictions(map[string]string{"the site is down": "incident"})

	out, err := runCommand(t, "test", "the site is down",
		"--nlp-endpoint", testNLPEndpoint,
		"--expected-label", "incident")
	require.NoError(t, err)
	assert.Contains(t, out, "incident")

	_, err = runCommand(t, "test", "the site is down",
		"--nlp-endpoint", testNLPEndpoint,
		"--expected-label", "greeting")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 test case(s) failed")
}

func TestTestCommandFile(t *testing.T) {
	activateNLPMock(t)
	registerPredictions(map[string]string{"hi": "greeting", "down again": "incident"})

	path := filepath.Join(t.TempDir(), "cases.tsv")
	testutil.WriteFile(t, path, []byte("hi\tgreeting\n\ndown again\tincident\n"))

	out, err := runCommand(t, "test", path, "--nlp-endpoint", testNLPEndpoint, "--expected-label=")
	require.NoError(t, err)
	assert.Contains(t, out, `"down again"`)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestTestCommandInvalidFile(t *testing.T) {
	activateNLPMock(t)

	path := filepath.Join(t.TempDir(), "cases.tsv")
	testutil.WriteFile(t, path, []byte("only one column\n"))

	_, err := runCommand(t, "test", path, "--nlp-endpoint", testNLPEndpoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1 of")
}

func TestTestCommandRequiresArgument(t *testing.T) {
	_, err := runCommand(t, "test")
	assert.Error(t, err)
}
