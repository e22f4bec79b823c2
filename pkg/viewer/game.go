// Package viewer renders a running herd simulation with ebiten and turns
// player input into world actor messages.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/herd"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-herding-simulation/pkg/ui"
)

const (
	panelWidth  = 220
	statsHeight = 110
	spawnBatch  = 5
)

var (
	whiteImage = ebiten.NewImage(3, 3)

	groundColor    = color.RGBA{R: 46, G: 74, B: 40, A: 255}
	obstacleColor  = color.RGBA{R: 90, G: 80, B: 70, A: 255}
	calmColor      = color.RGBA{R: 240, G: 240, B: 230, A: 255}
	fleeingColor   = color.RGBA{R: 255, G: 170, B: 60, A: 255}
	herderColor    = color.RGBA{R: 60, G: 120, B: 255, A: 255}
	perceptionClr  = color.RGBA{R: 120, G: 200, B: 255, A: 60}
	separationClr  = color.RGBA{R: 255, G: 80, B: 80, A: 90}
	fleeClr        = color.RGBA{R: 255, G: 200, B: 0, A: 70}
	orbitClr       = color.RGBA{R: 80, G: 160, B: 255, A: 160}
	destinationClr = color.RGBA{R: 0, G: 255, B: 160, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot

	cfg   *simulation.Config
	view  viewport
	panel *ui.Panel

	// Widget references for easy access
	widgetPaused     *ui.Checkbox
	widgetTimeScale  *ui.Slider
	widgetPerception *ui.Checkbox
	widgetSeparation *ui.Checkbox
	widgetFlee       *ui.Checkbox
	widgetOrbit      *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns the world actor on system and builds the viewer around it.
func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) (*Game, error) {
	// Buffer to avoid blocking the world actor
	snapshotCh := make(chan *simulation.Snapshot, 10)

	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		cfg:        cfg,
		view:       newViewport(cfg.Bounds(), cfg.PixelsPerUnit, panelWidth, 0),
	}

	_, worldH := g.view.size()
	panel := ui.NewPanel("Herding", 0, 0, panelWidth, float64(worldH))

	panel.AddSection("Herder")
	panel.AddButton("Reverse direction", g.toggleDirection)

	panel.AddSection("Herd")
	panel.AddButton(fmt.Sprintf("Add %d members", spawnBatch), func() {
		g.tell(wrapperspb.UInt32(spawnBatch))
	})
	panel.AddButton("Remove newest member", func() {
		g.tell(wrapperspb.String(""))
	})

	panel.AddSection("Simulation")
	g.widgetPaused = panel.AddCheckbox("Paused", false)
	g.widgetTimeScale = panel.AddSlider("Time scale", 0.1, 4, 1)

	panel.AddSection("Gizmos")
	g.widgetPerception = panel.AddCheckbox("Perception radius", cfg.ShowPerception)
	g.widgetSeparation = panel.AddCheckbox("Separation radius", cfg.ShowSeparation)
	g.widgetFlee = panel.AddCheckbox("Flee distance", cfg.ShowFlee)
	g.widgetOrbit = panel.AddCheckbox("Herder orbit", cfg.ShowOrbit)

	panel.Height = math.Max(panel.Height, panel.ContentHeight()+statsHeight)
	g.panel = panel
	return g, nil
}

func (g *Game) tell(msg proto.Message) {
	if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
		g.System.Logger().Errorf("failed to send %T to world: %v", msg, err)
	}
}

func (g *Game) toggleDirection() {
	g.tell(&emptypb.Empty{})
}

// tickDuration is the simulated time covered by one ebiten update.
func tickDuration(tps int, timeScale float64) time.Duration {
	if tps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * timeScale / float64(tps))
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Update UI Panel
	g.panel.Update()

	// 2. Retrieve the latest state without blocking
Drain:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Drain
		}
	}

	// 3. Edge triggers reverse the herder
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.toggleDirection()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		x, y := float64(mx), float64(my)
		if !g.panel.Contains(x, y) && g.view.contains(x, y) {
			g.toggleDirection()
		}
	}

	// 4. Trigger Simulation Step
	if !g.widgetPaused.Value {
		if dt := tickDuration(ebiten.TPS(), g.widgetTimeScale.Value); dt > 0 {
			g.tell(durationpb.New(dt))
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	w, h := g.view.size()
	vector.FillRect(screen, panelWidth, 0, float32(w), float32(h), groundColor, false)

	if s := g.lastState; s != nil {
		for _, o := range s.Obstacles {
			x, y := g.view.toScreen(o.Center)
			vector.FillCircle(screen, x, y, g.view.length(o.Radius), obstacleColor, true)
		}
		if g.widgetOrbit.Value {
			g.drawOrbit(screen, s)
		}
		for _, m := range s.Members {
			g.drawMember(screen, m)
		}
		g.drawHerder(screen, s.Herder)
	}

	g.panel.Draw(screen)
	g.drawStats(screen)
}

func (g *Game) drawOrbit(screen *ebiten.Image, s *simulation.Snapshot) {
	o := s.Herder.Orbit
	cx, cy := g.view.toScreen(o.Center)
	vector.StrokeCircle(screen, cx, cy, g.view.length(o.Radius), 1, orbitClr, true)
	vector.StrokeLine(screen, cx-4, cy, cx+4, cy, 1, orbitClr, true)
	vector.StrokeLine(screen, cx, cy-4, cx, cy+4, 1, orbitClr, true)

	hx, hy := g.view.toScreen(s.Herder.Position)
	tx, ty := g.view.toScreen(o.Target)
	dx, dy := g.view.toScreen(o.Destination)
	vector.StrokeLine(screen, hx, hy, dx, dy, 1, destinationClr, true)
	vector.StrokeCircle(screen, tx, ty, 3, 1, orbitClr, true)
	vector.FillCircle(screen, dx, dy, 2, destinationClr, true)
}

func (g *Game) drawMember(screen *ebiten.Image, m herd.MemberGizmo) {
	x, y := g.view.toScreen(m.Position)
	if g.widgetPerception.Value {
		vector.StrokeCircle(screen, x, y, g.view.length(m.PerceptionRadius), 1, perceptionClr, true)
	}
	if g.widgetSeparation.Value {
		vector.StrokeCircle(screen, x, y, g.view.length(m.SeparationRadius), 1, separationClr, true)
	}
	if g.widgetFlee.Value && m.FleeDistance > 0 {
		vector.StrokeCircle(screen, x, y, g.view.length(m.FleeDistance), 1, fleeClr, true)
	}

	clr := calmColor
	if m.Fleeing {
		clr = fleeingColor
	}
	drawArrow(screen, x, y, m.Heading, g.view.length(0.8), clr)
}

func (g *Game) drawHerder(screen *ebiten.Image, h herd.HerderGizmo) {
	x, y := g.view.toScreen(h.Position)
	vector.FillCircle(screen, x, y, g.view.length(0.7), herderColor, true)
	drawArrow(screen, x, y, h.Forward, g.view.length(1.2), herderColor)
}

// drawArrow draws a triangle at (x, y) pointing along heading on the XZ plane.
func drawArrow(screen *ebiten.Image, x, y float32, heading geometry.Vector3D, size float32, clr color.RGBA) {
	angle := heading.Yaw()
	s := float64(size)
	tipX := float64(x) + math.Cos(angle)*s*1.5
	tipY := float64(y) + math.Sin(angle)*s*1.5
	rightX := float64(x) + math.Cos(angle+2.5)*s
	rightY := float64(y) + math.Sin(angle+2.5)*s
	leftX := float64(x) + math.Cos(angle-2.5)*s
	leftY := float64(y) + math.Sin(angle-2.5)*s

	r, gr, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gr, ColorB: b, ColorA: a},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gr, ColorB: b, ColorA: a},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gr, ColorB: b, ColorA: a},
	}
	screen.DrawTriangles(vertices, []uint16{0, 1, 2}, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) drawStats(screen *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	if s := g.lastState; s != nil {
		msg = fmt.Sprintf("Tick %d  (%.1fs)\nMembers: %d  Fleeing: %d\nHerder: %s\n%s",
			s.Tick, s.Elapsed, len(s.Members), s.FleeingCount, s.Herder.Direction, msg)
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, int(g.panel.Height)-statsHeight)

	mx, my := ebiten.CursorPosition()
	if x, y := float64(mx), float64(my); g.view.contains(x, y) {
		p := g.view.toWorld(x, y)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("x=%.1f z=%.1f", p.X, p.Z), panelWidth+8, 4)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	w, h := g.view.size()
	return panelWidth + w, max(h, int(g.panel.Height))
}
