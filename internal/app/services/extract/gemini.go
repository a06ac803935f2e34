package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	domain "github.com/pantrylab/recipehub/internal/app/domain/extract"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// The schema itself travels in the generation config, so the prompt only
// carries the task and the input text.
const promptTemplate = `Bạn là một trình phân tích văn bản công thức nấu ăn.
Nhiệm vụ: Trích xuất thông tin từ đoạn text về món ăn, và trả về kết quả theo JSON với schema đã khai báo.

Text đầu vào:
%s

Chỉ trả về dữ liệu JSON hợp lệ, không kèm lời giải thích.`

// GeminiGenerator extracts recipes through the Gemini API with a structured
// response schema.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGeminiGenerator creates a generator bound to one model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.NewDefault("gemini")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, text string) (domain.Recipe, error) {
	prompt := fmt.Sprintf(promptTemplate, text)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recipeSchema(),
	}

	// Retry loop for rate limits and transient server errors.
	const maxRetries = 3
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return domain.Recipe{}, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			}
		}

		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err != nil {
			lastErr = err
			if retryableAPIError(err) {
				g.log.WithError(err).WithField("attempt", i+1).Warn("Gemini request throttled; retrying")
				continue
			}
			return domain.Recipe{}, fmt.Errorf("generate content: %w", err)
		}

		raw := strings.TrimSpace(result.Text())
		if raw == "" {
			return domain.Recipe{}, fmt.Errorf("no completion returned")
		}

		var recipe domain.Recipe
		if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
			return domain.Recipe{}, fmt.Errorf("parse model output: %w", err)
		}
		return recipe, nil
	}
	return domain.Recipe{}, fmt.Errorf("generate content: %w", lastErr)
}

func retryableAPIError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}

// recipeSchema declares the structured output the model must produce. Field
// descriptions match the catalog's ingredient split and stay in Vietnamese
// because the crawled sources are Vietnamese cooking sites.
func recipeSchema() *genai.Schema {
	countableLine := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ingredient_name": {
				Type:        genai.TypeString,
				Description: "Tên nguyên liệu có thể đếm được theo số lượng (ví dụ: 2 quả trứng, 3 củ hành).",
			},
			"quantity": {
				Type:        genai.TypeNumber,
				Description: "Số lượng nguyên liệu, dạng số.",
				Nullable:    genai.Ptr(true),
			},
			"unit": {
				Type:        genai.TypeString,
				Description: "Đơn vị đếm rời rạc, ví dụ: quả, củ, bó, con, cái.",
				Nullable:    genai.Ptr(true),
			},
		},
		Required: []string{"ingredient_name"},
	}
	uncountableLine := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ingredient_name": {
				Type:        genai.TypeString,
				Description: "Tên nguyên liệu không thể đếm theo đơn vị quả/cái mà thường theo khối lượng hoặc thể tích (ví dụ: 500g cá, 1 muỗng canh nước mắm).",
			},
			"quantity": {
				Type:        genai.TypeNumber,
				Description: "Giá trị số lượng của nguyên liệu.",
				Nullable:    genai.Ptr(true),
			},
			"unit": {
				Type:        genai.TypeString,
				Description: "Đơn vị đo lường, ví dụ: g, kg, muỗng canh, lít.",
				Nullable:    genai.Ptr(true),
			},
		},
		Required: []string{"ingredient_name"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recipe_name": {
				Type:        genai.TypeString,
				Description: "Tên món ăn.",
			},
			"default_servings": {
				Type:        genai.TypeInteger,
				Description: "Số người ăn mà công thức này được thiết kế cho.",
				Nullable:    genai.Ptr(true),
			},
			"instructions": {
				Type:        genai.TypeString,
				Description: "Phần mô tả cách nấu món ăn.",
			},
			"countable_ingredients": {
				Type:        genai.TypeArray,
				Description: "Danh sách các nguyên liệu có thể đếm được.",
				Items:       countableLine,
			},
			"uncountable_ingredients": {
				Type:        genai.TypeArray,
				Description: "Danh sách các nguyên liệu không thể đếm, thường có đơn vị đo.",
				Items:       uncountableLine,
			},
		},
		Required: []string{"recipe_name", "instructions", "countable_ingredients", "uncountable_ingredients"},
	}
}
