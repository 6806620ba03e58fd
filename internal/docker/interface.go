package docker

import (
	"context"

	"github.com/rusenback/labconsole/internal/model"
)

// LabClient interface mahdollistaa mockauksen testeissä
type LabClient interface {
	ListContainers(ctx context.Context) ([]model.Container, error)
	Close() error
}

// Varmista että Client toteuttaa interfacen
var _ LabClient = (*Client)(nil)
