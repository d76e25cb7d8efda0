package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
)

const ConstantName = "constant"

// Constant predicts a single value for every sample. It needs no data and
// is used to check the plumbing of a run end to end.
type Constant struct {
	value float64

	once     sync.Once
	initRuns int
	model    *ConstantModel
}

func NewConstant(value float64) *Constant {
	return &Constant{value: value}
}

func (c *Constant) Name() string { return ConstantName }

func (c *Constant) InitData() error {
	c.once.Do(func() {
		c.initRuns++
		c.model = &ConstantModel{Value: c.value}
	})
	return nil
}

// InitCount reports how many times data initialization actually ran.
func (c *Constant) InitCount() int { return c.initRuns }

func (c *Constant) Model() (Model, error) {
	if c.model == nil {
		return nil, errors.New("constant: data not initialized")
	}
	return c.model, nil
}

// Run scores the constant predictor. The "value" option overrides the
// predicted value.
func (c *Constant) Run(ctx context.Context, opts map[string]any) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.InitData(); err != nil {
		return nil, err
	}
	model := &ConstantModel{Value: c.model.Value}
	if v, ok := opts["value"].(float64); ok {
		model.Value = v
	}
	// Mean absolute error against a target of 1.
	mae := 1 - model.Value
	if mae < 0 {
		mae = -mae
	}
	return &Outcome{
		ValidationScores: metricdict.Dict{"mae": mae},
		TestScores:       metricdict.Dict{"mae": mae},
		Model:            model,
	}, nil
}

type ConstantModel struct {
	Value float64 `json:"value"`
}

func (m *ConstantModel) SaveFileExtension() string { return "json" }

func (m *ConstantModel) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling constant model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
