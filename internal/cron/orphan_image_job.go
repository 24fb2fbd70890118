package cron

import (
	"context"
	"fmt"

	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

// imageReconciler sweeps image rows left behind by interrupted deletes.
type imageReconciler interface {
	Run(ctx context.Context) (int, error)
}

// OrphanImageJobParams configure the orphan image sweep.
type OrphanImageJobParams struct {
	Logger     *logger.Logger
	Reconciler imageReconciler
}

// NewOrphanImageJob wires the media reconciler into the cron worker.
// Catalog deletes remove remote objects and rows as separate steps, so a
// crash between them strands rows; this job retires them.
func NewOrphanImageJob(params OrphanImageJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &orphanImageJob{
		logg:       params.Logger,
		reconciler: params.Reconciler,
	}, nil
}

type orphanImageJob struct {
	logg       *logger.Logger
	reconciler imageReconciler
}

func (j *orphanImageJob) Name() string { return "orphan-image-sweep" }

func (j *orphanImageJob) Run(ctx context.Context) error {
	swept, err := j.reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("orphan image sweep: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "images_swept", swept), "orphan image sweep complete")
	return nil
}
