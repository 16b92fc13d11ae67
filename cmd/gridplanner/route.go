package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"grid-planner/planner"
)

func RouteCmd() *cobra.Command {
	var (
		configFile string
		from, to   string
		radius     float64
	)
	c := &cobra.Command{
		Use:   "route",
		Short: "compute one path and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			goal, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			logger := cfg.Logger(os.Stderr)

			ctx := cmd.Context()
			engine, _, err := buildEngine(ctx, cfg, logger, planner.WithWorkers(1))
			if err != nil {
				return err
			}
			defer engine.Close()

			res, _ := engine.FindPath(ctx, planner.Request{Start: start, Goal: goal, AgentRadius: radius})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(routeResponse(res)); err != nil {
				return err
			}
			return res.Err
		},
	}
	c.Flags().StringVar(&configFile, "config", "", "hjson config file (defaults when empty)")
	c.Flags().StringVar(&from, "from", "", "start position as x,y[,z]")
	c.Flags().StringVar(&to, "to", "", "goal position as x,y[,z]")
	c.Flags().Float64Var(&radius, "radius", 0, "agent radius in world units")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}

// parsePoint reads "x,y" or "x,y,z"
func parsePoint(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return mgl64.Vec3{}, fmt.Errorf("want x,y[,z], got %q", s)
	}
	var p mgl64.Vec3
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		p[i] = v
	}
	return p, nil
}
