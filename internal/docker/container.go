package docker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"

	"github.com/rusenback/labconsole/internal/model"
)

// ListContainers palauttaa kaikki containerit (running + stopped), running ensin
func (c *Client) ListContainers(ctx context.Context) ([]model.Container, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All: true,
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Container, 0, len(containers))
	for _, cont := range containers {
		result = append(result, toModel(cont))
	}
	sortContainers(result)

	return result, nil
}

func toModel(cont types.Container) model.Container {
	// Poista "/" container nimen alusta jos on
	name := ""
	if len(cont.Names) > 0 {
		name = strings.TrimPrefix(cont.Names[0], "/")
	}

	id := cont.ID
	if len(id) > 12 {
		id = id[:12]
	}

	ports := make([]model.Port, 0, len(cont.Ports))
	for _, p := range cont.Ports {
		ports = append(ports, model.Port{
			Private: int(p.PrivatePort),
			Public:  int(p.PublicPort),
			Type:    p.Type,
		})
	}

	return model.Container{
		ID:      id,
		Name:    name,
		Image:   cont.Image,
		Status:  cont.Status,
		State:   cont.State,
		Created: time.Unix(cont.Created, 0),
		Ports:   ports,
	}
}

func sortContainers(cs []model.Container) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Running() != cs[j].Running() {
			return cs[i].Running()
		}
		return cs[i].Name < cs[j].Name
	})
}
