package decompiler

// displayableKey identifies a screen displayable by the qualified name of
// the callable that builds it and its default style.
type displayableKey struct {
	displayable string
	style       string
}

// displayableNames maps the built-in screen language statements back to
// their keyword. An empty style stands for no style.
var displayableNames = map[displayableKey]DisplayableName{
	{"renpy.display.behavior.OnEvent", ""}:               {"on", ChildrenNone},
	{"renpy.display.behavior.OnEvent", "0"}:              {"on", ChildrenNone},
	{"renpy.display.behavior.MouseArea", ""}:             {"mousearea", ChildrenNone},
	{"renpy.display.behavior.MouseArea", "0"}:            {"mousearea", ChildrenNone},
	{"renpy.ui._add", ""}:                                {"add", ChildrenNone},
	{"renpy.sl2.sldisplayables.sl2add", ""}:              {"add", ChildrenNone},
	{"renpy.ui._hotbar", "hotbar"}:                       {"hotbar", ChildrenNone},
	{"renpy.sl2.sldisplayables.sl2vbar", ""}:             {"vbar", ChildrenNone},
	{"renpy.sl2.sldisplayables.sl2bar", ""}:              {"bar", ChildrenNone},
	{"renpy.ui._label", "label"}:                         {"label", ChildrenNone},
	{"renpy.ui._textbutton", "0"}:                        {"textbutton", ChildrenNone},
	{"renpy.ui._textbutton", "button"}:                   {"textbutton", ChildrenNone},
	{"renpy.ui._imagebutton", "image_button"}:            {"imagebutton", ChildrenNone},
	{"renpy.display.im.image", "default"}:                {"image", ChildrenNone},
	{"renpy.display.behavior.Input", "input"}:            {"input", ChildrenNone},
	{"renpy.display.behavior.Timer", "default"}:          {"timer", ChildrenNone},
	{"renpy.ui._key", ""}:                                {"key", ChildrenNone},
	{"renpy.text.text.Text", "text"}:                     {"text", ChildrenNone},
	{"renpy.display.layout.Null", "default"}:             {"null", ChildrenNone},
	{"renpy.display.dragdrop.Drag", ""}:                  {"drag", ChildrenOne},
	{"renpy.display.dragdrop.Drag", "drag"}:              {"drag", ChildrenOne},
	{"renpy.display.motion.Transform", "transform"}:      {"transform", ChildrenOne},
	{"renpy.display.transform.Transform", "transform"}:   {"transform", ChildrenOne},
	{"renpy.ui._hotspot", "hotspot"}:                     {"hotspot", ChildrenOne},
	{"renpy.sl2.sldisplayables.sl2viewport", "viewport"}: {"viewport", ChildrenOne},
	{"renpy.display.behavior.Button", "button"}:          {"button", ChildrenOne},
	{"renpy.display.layout.Window", "frame"}:             {"frame", ChildrenOne},
	{"renpy.display.layout.Window", "window"}:            {"window", ChildrenOne},
	{"renpy.display.behavior.AreaPicker", "default"}:     {"areapicker", ChildrenOne},
	{"renpy.display.dragdrop.DragGroup", ""}:             {"draggroup", ChildrenMany},
	{"renpy.ui._imagemap", "imagemap"}:                   {"imagemap", ChildrenMany},
	{"renpy.display.layout.Side", "side"}:                {"side", ChildrenMany},
	{"renpy.display.layout.Grid", "grid"}:                {"grid", ChildrenMany},
	{"renpy.sl2.sldisplayables.sl2vpgrid", "vpgrid"}:     {"vpgrid", ChildrenMany},
	{"renpy.display.layout.MultiBox", "fixed"}:           {"fixed", ChildrenMany},
	{"renpy.display.layout.MultiBox", "vbox"}:            {"vbox", ChildrenMany},
	{"renpy.display.layout.MultiBox", "hbox"}:            {"hbox", ChildrenMany},
}
