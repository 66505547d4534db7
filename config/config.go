package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/segmentation"
)

// Значения по умолчанию подобраны вручную под исходную установку:
// кадр 300x300, эталонные окна заданы относительно кадра.
const (
	defaultCrop            = "216,675,516,975"
	defaultMaterialTop     = "150,80,190,120"
	defaultMaterialBottom  = "260,250,300,300"
	defaultSubstrateTop    = "80,10,120,50"
	defaultSubstrateBottom = "0,150,25,180"
	defaultSplitIndex      = 45000
	defaultSplitRow        = 150
	defaultContrast        = 2.0
	defaultOverlayOpacity  = 0.4
)

type Config struct {
	TelegramToken string
	LogLevel      string

	Crop           entity.Rect          // область кадра в координатах исходного снимка
	Windows        segmentation.Windows // эталонные окна относительно кадра
	Split          segmentation.Split
	Contrast       float64
	Isolation      segmentation.IsolationMode
	Rethreshold    bool
	Backend        string
	OverlayOpacity float64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		Crop:          p.rect("GT_CROP", defaultCrop),
		Windows: segmentation.Windows{
			MaterialTop:     p.rect("GT_MATERIAL_TOP", defaultMaterialTop),
			MaterialBottom:  p.rect("GT_MATERIAL_BOTTOM", defaultMaterialBottom),
			SubstrateTop:    p.rect("GT_SUBSTRATE_TOP", defaultSubstrateTop),
			SubstrateBottom: p.rect("GT_SUBSTRATE_BOTTOM", defaultSubstrateBottom),
		},
		Split: segmentation.Split{
			Mode:  segmentation.SplitMode(envOr("GT_SPLIT_MODE", string(segmentation.SplitFlatIndex))),
			Index: p.integer("GT_SPLIT_INDEX", defaultSplitIndex),
			Row:   p.integer("GT_SPLIT_ROW", defaultSplitRow),
		},
		Contrast:       p.decimal("GT_CONTRAST", defaultContrast),
		Isolation:      segmentation.IsolationMode(envOr("GT_ISOLATION", string(segmentation.IsolationInPlace))),
		Rethreshold:    p.boolean("GT_RETHRESHOLD", true),
		Backend:        envOr("GT_BACKEND", "native"),
		OverlayOpacity: p.decimal("GT_OVERLAY_OPACITY", defaultOverlayOpacity),
	}
	if p.err != nil {
		return nil, p.err
	}

	return cfg, nil
}

// Validate проверяет конфигурацию до загрузки снимка.
func (c *Config) Validate() error {
	if c.Crop.Empty() || c.Crop.X0 < 0 || c.Crop.Y0 < 0 {
		return fmt.Errorf("%w: degenerate crop %s", entity.ErrInvalidConfiguration, c.Crop)
	}
	if c.Contrast < 0 {
		return fmt.Errorf("%w: contrast factor %.2f is negative", entity.ErrInvalidConfiguration, c.Contrast)
	}
	if c.OverlayOpacity < 0 || c.OverlayOpacity > 1 {
		return fmt.Errorf("%w: overlay opacity %.2f outside [0, 1]", entity.ErrInvalidConfiguration, c.OverlayOpacity)
	}
	switch c.Isolation {
	case segmentation.IsolationInPlace, segmentation.IsolationSnapshot:
	default:
		return fmt.Errorf("%w: unknown isolation mode %q", entity.ErrInvalidConfiguration, c.Isolation)
	}

	th := segmentation.Thresholder{Windows: c.Windows, Split: c.Split}
	return th.Validate(c.Crop.Dx(), c.Crop.Dy())
}

// Pipeline собирает конвейер разметки из конфигурации.
func (c *Config) Pipeline() *segmentation.Pipeline {
	return &segmentation.Pipeline{
		Thresholder: &segmentation.Thresholder{Windows: c.Windows, Split: c.Split},
		Filter:      &segmentation.IsolationFilter{Mode: c.Isolation},
		Rethreshold: c.Rethreshold,
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// parser запоминает первую ошибку разбора, чтобы не проверять каждое поле.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", entity.ErrInvalidConfiguration, key, value, err)
	}
}

func (p *parser) rect(key, def string) entity.Rect {
	value := envOr(key, def)
	r, err := ParseRect(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return r
}

func (p *parser) integer(key string, def int) int {
	value := envOr(key, strconv.Itoa(def))
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return n
}

func (p *parser) decimal(key string, def float64) float64 {
	value := envOr(key, strconv.FormatFloat(def, 'f', -1, 64))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	value := envOr(key, strconv.FormatBool(def))
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return b
}

// ParseRect разбирает "x0,y0,x1,y1".
func ParseRect(s string) (entity.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return entity.Rect{}, fmt.Errorf("expected x0,y0,x1,y1, got %d values", len(parts))
	}
	var v [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return entity.Rect{}, err
		}
		v[i] = n
	}
	return entity.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}
