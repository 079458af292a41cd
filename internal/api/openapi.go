package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Negativehue/Auxilium/internal/logx"
)

// OpenAPIDocument describes the public HTTP surface.
func OpenAPIDocument(version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Auxilium API",
			Description: "Relays summary and reviewer generation requests to Gemini.",
			Version:     version,
		},
	}

	nonEmpty := func(desc string) *openapi3.Schema {
		s := openapi3.NewStringSchema().WithMinLength(1)
		s.Description = desc
		return s
	}
	reqSchema := openapi3.NewObjectSchema().
		WithProperty("summary_type", nonEmpty("Summary format, e.g. \"bullet points\"")).
		WithProperty("reviewer_type", nonEmpty("Reviewer style, e.g. \"academic\"")).
		WithProperty("extracted_text", nonEmpty("Source text, embedded verbatim in the prompt"))
	reqSchema.Required = []string{"summary_type", "reviewer_type", "extracted_text"}

	okSchema := openapi3.NewObjectSchema().WithProperty("response", openapi3.NewStringSchema())
	okSchema.Required = []string{"response"}
	errSchema := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	errSchema.Required = []string{"error"}

	gen := openapi3.NewOperation()
	gen.Responses = &openapi3.Responses{}
	gen.OperationID = "generate"
	gen.Summary = "Generate a summary and reviewer for the given text"
	gen.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(reqSchema),
	}
	gen.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Generated text").WithJSONSchema(okSchema))
	gen.AddResponse(http.StatusBadRequest, openapi3.NewResponse().WithDescription("Missing parameters or malformed body").WithJSONSchema(errSchema))
	gen.AddResponse(http.StatusInternalServerError, openapi3.NewResponse().WithDescription("Upstream or internal failure").WithJSONSchema(errSchema))
	doc.AddOperation("/generate", http.MethodPost, gen)

	healthSchema := openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema())
	health := openapi3.NewOperation()
	health.Responses = &openapi3.Responses{}
	health.OperationID = "healthz"
	health.Summary = "Health check"
	health.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Serving").WithJSONSchema(healthSchema))
	health.AddResponse(http.StatusServiceUnavailable, openapi3.NewResponse().WithDescription("Draining").WithJSONSchema(healthSchema))
	doc.AddOperation("/healthz", http.MethodGet, health)

	return doc
}

// OpenAPIHandler serves the OpenAPI document as JSON.
func OpenAPIHandler(version string) http.HandlerFunc {
	b, err := OpenAPIDocument(version).MarshalJSON()
	if err != nil {
		panic(err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(b); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}
