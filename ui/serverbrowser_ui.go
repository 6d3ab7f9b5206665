package ui

import (
	"fmt"
	"image/color"

	"github.com/automoto/rtspawn/fonts"
	"github.com/automoto/rtspawn/master"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// ServerBrowserUI lists hosts from the master and offers a direct connect
// form.
type ServerBrowserUI struct {
	UI *ebitenui.UI

	OnConnect func(address, playerName string)
	OnRefresh func()

	nameInput     *widget.TextInput
	addressInput  *widget.TextInput
	serverList    *widget.Container
	browseLabel   *widget.Label
	statusLabel   *widget.Label
	connectBtn    *widget.Button
	serverButtons []*widget.Button

	titleFace  text.Face
	normalFace text.Face
	smallFace  text.Face
}

func NewServerBrowserUI(address, playerName string, onConnect func(address, playerName string), onRefresh func()) *ServerBrowserUI {
	ui := &ServerBrowserUI{
		OnConnect:  onConnect,
		OnRefresh:  onRefresh,
		titleFace:  fonts.Title.Get(),
		normalFace: fonts.Regular.Get(),
		smallFace:  fonts.Small.Get(),
	}
	ui.buildUI()
	ui.addressInput.SetText(address)
	ui.nameInput.SetText(playerName)
	return ui
}

func (ui *ServerBrowserUI) buildUI() {
	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{20, 20, 30, 255})),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	contentContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(12)),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)

	titleLabel := widget.NewLabel(
		widget.LabelOpts.Text("SERVERS", &ui.titleFace, &widget.LabelColor{
			Idle: color.RGBA{255, 255, 255, 255},
		}),
	)
	contentContainer.AddChild(titleLabel)

	contentContainer.AddChild(ui.buildDirectConnectPanel())

	ui.serverList = widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{30, 30, 45, 255})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(6)),
			widget.RowLayoutOpts.Spacing(4),
		)),
	)
	contentContainer.AddChild(ui.serverList)

	ui.browseLabel = widget.NewLabel(
		widget.LabelOpts.Text("", &ui.smallFace, &widget.LabelColor{
			Idle: color.RGBA{160, 160, 170, 255},
		}),
	)
	contentContainer.AddChild(ui.browseLabel)

	ui.statusLabel = widget.NewLabel(
		widget.LabelOpts.Text("", &ui.smallFace, &widget.LabelColor{
			Idle: color.RGBA{255, 200, 100, 255},
		}),
	)
	contentContainer.AddChild(ui.statusLabel)

	refreshButton := widget.NewButton(
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(80, 28)),
		widget.ButtonOpts.Image(buttonImage(color.RGBA{60, 60, 80, 255})),
		widget.ButtonOpts.Text("Refresh", &ui.normalFace, buttonTextColor()),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			if ui.OnRefresh != nil {
				ui.OnRefresh()
			}
		}),
	)
	contentContainer.AddChild(refreshButton)

	rootContainer.AddChild(contentContainer)

	ui.UI = &ebitenui.UI{Container: rootContainer}
}

func (ui *ServerBrowserUI) buildDirectConnectPanel() *widget.Container {
	padding := widget.Insets{Top: 6, Bottom: 6, Left: 8, Right: 8}
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{30, 30, 45, 255})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&padding),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)

	ui.nameInput = ui.labeledInput(panel, "Name:    ", "player")
	ui.addressInput = ui.labeledInput(panel, "Address:", "localhost:7373")

	ui.connectBtn = widget.NewButton(
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(120, 26)),
		widget.ButtonOpts.Image(buttonImage(color.RGBA{40, 100, 40, 255})),
		widget.ButtonOpts.Text("Connect", &ui.normalFace, buttonTextColor()),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			ui.connect(ui.addressInput.GetText())
		}),
	)
	panel.AddChild(ui.connectBtn)

	return panel
}

func (ui *ServerBrowserUI) labeledInput(parent *widget.Container, label, placeholder string) *widget.TextInput {
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)

	row.AddChild(widget.NewLabel(
		widget.LabelOpts.Text(label, &ui.normalFace, &widget.LabelColor{
			Idle: color.RGBA{200, 200, 200, 255},
		}),
	))

	input := widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(widget.WidgetOpts.MinSize(200, 22)),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     image.NewNineSliceColor(color.RGBA{50, 50, 70, 255}),
			Disabled: image.NewNineSliceColor(color.RGBA{40, 40, 50, 255}),
		}),
		widget.TextInputOpts.Face(&ui.normalFace),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:          color.RGBA{255, 255, 255, 255},
			Disabled:      color.RGBA{128, 128, 128, 255},
			Caret:         color.RGBA{255, 255, 255, 255},
			DisabledCaret: color.RGBA{128, 128, 128, 255},
		}),
		widget.TextInputOpts.Placeholder(placeholder),
		widget.TextInputOpts.Padding(widget.NewInsetsSimple(4)),
	)
	row.AddChild(input)
	parent.AddChild(row)
	return input
}

// SetServerList replaces the browse list with one join button per host.
func (ui *ServerBrowserUI) SetServerList(servers []master.ServerInfo) {
	ui.serverList.RemoveChildren()
	ui.serverButtons = ui.serverButtons[:0]

	for _, srv := range servers {
		address := srv.Address
		label := fmt.Sprintf("%s  %d/%d  %s", srv.Name, srv.Players, srv.MaxPlayers, srv.Address)
		btn := widget.NewButton(
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(320, 22)),
			widget.ButtonOpts.Image(buttonImage(color.RGBA{50, 50, 75, 255})),
			widget.ButtonOpts.Text(label, &ui.smallFace, buttonTextColor()),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				ui.connect(address)
			}),
		)
		ui.serverButtons = append(ui.serverButtons, btn)
		ui.serverList.AddChild(btn)
	}
}

func (ui *ServerBrowserUI) connect(address string) {
	if address == "" {
		address = "localhost:7373"
	}
	name := ui.nameInput.GetText()
	if name == "" {
		name = "player"
	}
	if ui.OnConnect != nil {
		ui.OnConnect(address, name)
	}
}

func (ui *ServerBrowserUI) SetStatus(msg string) {
	if ui.statusLabel != nil {
		ui.statusLabel.Label = msg
	}
}

func (ui *ServerBrowserUI) SetBrowseStatus(msg string) {
	if ui.browseLabel != nil {
		ui.browseLabel.Label = msg
	}
}

func (ui *ServerBrowserUI) SetConnecting(connecting bool) {
	ui.connectBtn.GetWidget().Disabled = connecting
	for _, btn := range ui.serverButtons {
		btn.GetWidget().Disabled = connecting
	}
}

func (ui *ServerBrowserUI) Update() {
	ui.UI.Update()
}

func buttonImage(idle color.RGBA) *widget.ButtonImage {
	return &widget.ButtonImage{
		Idle:     image.NewNineSliceColor(idle),
		Hover:    image.NewNineSliceColor(lighten(idle, 30)),
		Pressed:  image.NewNineSliceColor(lighten(idle, -15)),
		Disabled: image.NewNineSliceColor(color.RGBA{40, 40, 40, 255}),
	}
}

func buttonTextColor() *widget.ButtonTextColor {
	return &widget.ButtonTextColor{
		Idle:     color.RGBA{255, 255, 255, 255},
		Hover:    color.RGBA{255, 255, 200, 255},
		Pressed:  color.RGBA{200, 200, 200, 255},
		Disabled: color.RGBA{100, 100, 100, 255},
	}
}

func lighten(c color.RGBA, d int) color.RGBA {
	clamp := func(v int) uint8 { return uint8(min(255, max(0, v))) }
	return color.RGBA{clamp(int(c.R) + d), clamp(int(c.G) + d), clamp(int(c.B) + d), c.A}
}
