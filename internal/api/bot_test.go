package telegram

import (
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"groundtruth-bot/internal/domain/entity"
)

func TestImageFileID(t *testing.T) {
	id, ok := imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc"}})
	require.True(t, ok)
	require.Equal(t, "doc", id)

	id, ok = imageFileID(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}})
	require.True(t, ok)
	require.Equal(t, "large", id)

	_, ok = imageFileID(&tgbotapi.Message{Text: "hi"})
	require.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, msgConfigError, errorMessage(fmt.Errorf("label: %w", entity.ErrInvalidConfiguration)))
	require.Equal(t, msgConfigError, errorMessage(entity.ErrShapeMismatch))
	require.Equal(t, msgDegenerate, errorMessage(fmt.Errorf("preprocess: %w", entity.ErrDegenerateImage)))
	require.Equal(t, msgProcessingError, errorMessage(fmt.Errorf("decode image: bad header")))
}

func TestFormatSummary(t *testing.T) {
	labels := entity.NewLabelMap(2, 2)
	labels.Set(1, 1, entity.Material)
	gt := &entity.GroundTruth{
		Labels:  labels,
		Stats:   entity.ReferenceStats{SubstrateTop: 12.5, MaterialTop: 201, SubstrateBottom: 20, MaterialBottom: 190.25},
		Flipped: 3,
	}

	text := formatSummary(gt)
	require.Contains(t, text, "2x2")
	require.Contains(t, text, "Материал: 1 (25.0%), подложка: 3")
	require.Contains(t, text, "подложка 12.5, материал 201.0")
	require.Contains(t, text, "изолированных пикселей: 3")
}

func TestAcceptsImage(t *testing.T) {
	user := &entity.User{ID: 1, ChatID: 1, State: entity.StateMainMenu}
	require.False(t, acceptsImage(user))

	user.SetState(entity.StateAwaitingImage)
	require.True(t, acceptsImage(user))

	user.SetState(entity.StateProcessing)
	require.False(t, acceptsImage(user))
}
