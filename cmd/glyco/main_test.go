package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	app "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/config"
	"github.com/okian/glyco/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const referenceCSV = `Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Outcome
6,148,72,35,0,33.6,0.627,50,1
1,85,66,29,0,26.6,0.351,31,0
8,183,64,0,0,23.3,0.672,32,1
1,89,66,23,94,28.1,0.167,21,0
`

const modelJSON = `{
  "model_type": "logistic_regression",
  "version": "fixture",
  "features": ["Glucose", "BMI", "Age_category_older"],
  "coefficients": [1.2, 0.5, -0.3],
  "intercept": -0.8,
  "threshold": 0.45
}`

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given a server over artifacts on disk", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		dir := t.TempDir()
		cfg := config.New()
		cfg.ReferenceDataPath = filepath.Join(dir, "train.csv")
		cfg.ModelPath = filepath.Join(dir, "model.json")
		convey.So(os.WriteFile(cfg.ReferenceDataPath, []byte(referenceCSV), 0o600), convey.ShouldBeNil)
		convey.So(os.WriteFile(cfg.ModelPath, []byte(modelJSON), 0o600), convey.ShouldBeNil)

		svc, err := app.FromConfig(cfg, app.WithLogger(logger.Get()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newHTTPServer(cfg, svc).Handler)
		defer ts.Close()

		convey.Convey("When posting a measurement", func() {
			body := `{"pregnancies":6,"glucose":148,"blood_pressure":72,"skin_thickness":35,"insulin":0,"bmi":33.6,"diabetes_pedigree_function":0.627,"age":50}`
			resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the prediction round-trips through the stack", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var got map[string]interface{}
				convey.So(json.NewDecoder(resp.Body).Decode(&got), convey.ShouldBeNil)
				convey.So(got["positive"], convey.ShouldEqual, true)
				convey.So(got["threshold"], convey.ShouldEqual, 0.45)
			})
		})

		convey.Convey("When fetching the OpenAPI document", func() {
			resp, err := http.Get(ts.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When scraping metrics", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}
