package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"

	"keepcooking/internal/apperrors"
)

const ratingSystemPrompt = `You are a cooking assistant. Be concise and precise.

GOAL
Given a recipe and an image of the cooked recipe from the user, rate the image based on how closely it follows the recipe and how well it seems to be cooked.
You don't need to judge presentation, as long as it looks edible and correct.
Return a rating from 1 to 5 flames, and a response that justifies the rating with tips on how to improve, if any.
Also validate the image: if the meal called for a bowl of rice and the image has no rice, the image is invalid. Mark anything inappropriate or unrelated to cooking as invalid.

Respond with a single JSON object, no surrounding prose:
{"rating": <integer 1-5>, "response": "<justification and tips>", "valid_image": <true or false>}`

// RatingOutput is the agent's verdict on a completion photo. On
// ValidImage=false nothing is persisted and no reward is granted.
type RatingOutput struct {
	Rating     int    `json:"rating"`
	Response   string `json:"response"`
	ValidImage bool   `json:"valid_image"`
}

// RatingAgent scores a user's photo of a cooked recipe against the recipe
// itself.
type RatingAgent struct {
	llm *LLMService
}

func NewRatingAgent(llm *LLMService) *RatingAgent {
	return &RatingAgent{llm: llm}
}

// Rate sends the recipe and the JPEG bytes to the model and parses its
// structured verdict.
func (a *RatingAgent) Rate(ctx context.Context, recipe *RecipeOutput, image []byte) (*RatingOutput, error) {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	messages := []ChatMessage{
		{Role: "system", Content: ratingSystemPrompt},
		{Role: "user", Content: []map[string]interface{}{
			{"type": "text", "text": "This is the recipe:\n" + string(recipeJSON) + "\nAnd this is the image:"},
			{"type": "image_url", "image_url": map[string]interface{}{"url": dataURL}},
		}},
	}

	msg, err := a.llm.Chat(ctx, &ChatRequest{
		Messages:       messages,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		log.Printf("Photo rating failed: %v", err)
		return nil, apperrors.ErrGeneration
	}

	var output RatingOutput
	if err := json.Unmarshal([]byte(stripJSONFence(msg.Text())), &output); err != nil {
		log.Printf("Photo rating produced unparsable output: %v", err)
		return nil, apperrors.ErrGeneration
	}
	if output.Rating < 1 || output.Rating > 5 {
		log.Printf("Photo rating out of range: %d", output.Rating)
		return nil, apperrors.ErrGeneration
	}
	return &output, nil
}
