package colorbook

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/esimov/colorbook/utils"
	"github.com/google/uuid"
)

const (
	svgNS   = "http://www.w3.org/2000/svg"
	xlinkNS = "http://www.w3.org/1999/xlink"
	xmlNS   = "http://www.w3.org/XML/1998/namespace"

	// DefaultMarker is the class name which tags an element as paintable.
	DefaultMarker = "paint"

	// defaultSide is used for both dimensions when the artwork declares no usable size.
	defaultSide = 1024
)

// Layer selects one of the views derived from an artwork.
type Layer int

const (
	// FullLayer is the artwork as loaded, with the current region fills applied.
	FullLayer Layer = iota
	// FillLayer keeps only the region fills: every stroke and every decoration fill is suppressed.
	FillLayer
	// OutlineLayer keeps only the line art: every fill is suppressed and the layer takes no pointer input.
	OutlineLayer
)

func (l Layer) String() string {
	switch l {
	case FillLayer:
		return "fill"
	case OutlineLayer:
		return "outline"
	default:
		return "full"
	}
}

var (
	strokeProps = []string{
		"stroke", "stroke-width", "stroke-opacity", "stroke-linecap", "stroke-linejoin",
		"stroke-dasharray", "stroke-dashoffset", "stroke-miterlimit",
	}
	fillProps    = []string{"fill", "fill-opacity"}
	opacityProps = []string{"opacity", "fill-opacity", "stroke-opacity"}
)

// node is an element or a character data run of the parsed markup.
// Nodes are never modified once parsing is complete; the layer passes build new trees.
type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     []byte
}

func (n *node) isText() bool { return n.name.Local == "" }

func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) hasClass(class string) bool {
	v, ok := n.attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// RegionID identifies a paintable region. IDs follow document order, so a higher ID is painted on top.
type RegionID int

type region struct {
	node *node
	path []*node // ancestors, root first
}

// Document is a parsed artwork: an immutable element tree, the paintable regions
// found in it and the fill currently assigned to each region.
type Document struct {
	ID uuid.UUID

	root     *node
	prefixes map[string]string
	size     Size
	regions  []region
	index    map[*node]RegionID
	fills    []color.NRGBA
	rev      uint64
}

// ParseArtwork parses SVG markup. The first <svg> element found becomes the root.
// Elements carrying the marker class become paintable regions; when marker is empty
// DefaultMarker is used.
func ParseArtwork(r io.Reader, marker string) (*Document, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	root, prefixes, err := parseTree(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	doc := &Document{
		ID:       uuid.New(),
		root:     root,
		prefixes: prefixes,
		index:    make(map[*node]RegionID),
	}
	doc.size = normalizeViewBox(root)
	doc.collect(root, nil, marker)

	return doc, nil
}

// parseTree decodes the markup and returns the first <svg> element.
func parseTree(r io.Reader) (*node, map[string]string, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	prefixes := map[string]string{
		xlinkNS: "xlink",
		xmlNS:   "xml",
	}

	var (
		stack []*node
		root  *node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				}
			}
			switch {
			case root == nil && len(stack) == 0 && t.Name.Local == "svg":
				root = n
			case root == nil && t.Name.Local == "svg":
				// An <svg> wrapped in some other markup.
				root = n
				stack = stack[:0]
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				closed := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if closed == root {
					stack = stack[:0]
				}
			}
		case xml.CharData:
			if root == nil || len(stack) == 0 || len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &node{text: append([]byte(nil), t...)})
		}
	}
	if root == nil {
		return nil, nil, ErrNoRootElement
	}
	return root, prefixes, nil
}

// normalizeViewBox makes sure the root carries a usable viewBox and returns the logical size.
// A missing or invalid viewBox is computed from the width and height attributes, which are
// then removed so the graphic scales with its container.
func normalizeViewBox(root *node) Size {
	if v, ok := root.attr("viewBox"); ok {
		if vb, ok := parseViewBox(v); ok {
			return Size{W: vb[2], H: vb[3]}
		}
	}

	w := parseLength(root, "width")
	h := parseLength(root, "height")

	attrs := root.attrs[:0]
	for _, a := range root.attrs {
		if a.Name.Space == "" {
			switch a.Name.Local {
			case "width", "height", "viewBox":
				continue
			}
		}
		attrs = append(attrs, a)
	}
	root.attrs = append(attrs, xml.Attr{
		Name:  xml.Name{Local: "viewBox"},
		Value: fmt.Sprintf("0 0 %s %s", formatFloat(w), formatFloat(h)),
	})
	return Size{W: w, H: h}
}

func parseViewBox(v string) ([4]float64, bool) {
	var vb [4]float64
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return vb, false
	}
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vb, false
		}
		vb[i] = n
	}
	if !(vb[2] > 0 && vb[3] > 0) {
		return vb, false
	}
	return vb, true
}

// parseLength reads the leading number of a length attribute ("800", "800px", "100%").
func parseLength(n *node, name string) float64 {
	v, ok := n.attr(name)
	if !ok {
		return defaultSide
	}
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && strings.IndexByte("+-.0123456789eE", v[end]) >= 0 {
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(v[:end], 64); err == nil {
			if f > 0 {
				return f
			}
			break
		}
		end--
	}
	return defaultSide
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// collect walks the tree in document order and registers the paintable regions.
func (d *Document) collect(n *node, path []*node, marker string) {
	if n.isText() {
		return
	}
	if n.hasClass(marker) {
		liftStyleFill(n)
		fill := color.NRGBA{}
		if v, ok := n.attr("fill"); ok {
			if c, err := utils.ParseColor(v); err == nil {
				fill = c
			}
		} else {
			n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: "fill"}, Value: "transparent"})
		}
		d.index[n] = RegionID(len(d.regions))
		d.regions = append(d.regions, region{
			node: n,
			path: append([]*node(nil), path...),
		})
		d.fills = append(d.fills, fill)
	}
	path = append(path, n)
	for _, c := range n.children {
		d.collect(c, path, marker)
	}
}

// liftStyleFill moves a fill declaration of the style attribute into the fill attribute,
// so that setting the attribute later is not shadowed by the style.
func liftStyleFill(n *node) {
	for i, a := range n.attrs {
		if a.Name.Space != "" || a.Name.Local != "style" {
			continue
		}
		decls, removed := filterStyle(a.Value, []string{"fill"})
		fill, ok := removed["fill"]
		if !ok {
			return
		}
		n.attrs[i].Value = decls
		if _, has := n.attr("fill"); !has {
			n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: "fill"}, Value: fill})
		}
		return
	}
}

// filterStyle drops the listed properties from an inline style declaration list.
// It returns the remaining declarations and the values of the dropped ones.
func filterStyle(style string, props []string) (string, map[string]string) {
	removed := make(map[string]string)
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if contains(props, key) {
			removed[key] = val
			continue
		}
		kept = append(kept, key+":"+val)
	}
	return strings.Join(kept, ";"), removed
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Size returns the logical canvas size of the artwork.
func (d *Document) Size() Size { return d.size }

// Len returns the number of paintable regions.
func (d *Document) Len() int { return len(d.regions) }

// Fill returns the fill of a region. Transparent is the zero color.
func (d *Document) Fill(id RegionID) color.NRGBA {
	if !d.valid(id) {
		return color.NRGBA{}
	}
	return d.fills[id]
}

// SetFill assigns a flat color to a region.
func (d *Document) SetFill(id RegionID, c color.NRGBA) {
	if !d.valid(id) || d.fills[id] == c {
		return
	}
	d.fills[id] = c
	d.rev++
}

// Fills returns a copy of the fill table.
func (d *Document) Fills() []color.NRGBA {
	return append([]color.NRGBA(nil), d.fills...)
}

// SetFills restores a fill table previously obtained with Fills.
func (d *Document) SetFills(fills []color.NRGBA) error {
	if len(fills) != len(d.fills) {
		return errors.New("fill table does not match the artwork regions")
	}
	copy(d.fills, fills)
	d.rev++
	return nil
}

// ClearFills resets every region to transparent.
func (d *Document) ClearFills() {
	for i := range d.fills {
		d.fills[i] = color.NRGBA{}
	}
	d.rev++
}

// RegionName returns the id attribute of a region, if any.
func (d *Document) RegionName(id RegionID) string {
	if !d.valid(id) {
		return ""
	}
	v, _ := d.regions[id].node.attr("id")
	return v
}

// Revision changes whenever a region fill changes.
func (d *Document) Revision() uint64 { return d.rev }

func (d *Document) valid(id RegionID) bool {
	return id >= 0 && int(id) < len(d.regions)
}

// WriteLayer serializes one layer of the artwork with the current fills applied.
func (d *Document) WriteLayer(w io.Writer, l Layer) error {
	var tree *node
	switch l {
	case FillLayer:
		tree = d.transform(d.root, false, d.fillLayerPass)
	case OutlineLayer:
		tree = d.transform(d.root, false, outlineLayerPass)
		tree.attrs = setAttr(tree.attrs, "pointer-events", "none")
	default:
		tree = d.transform(d.root, false, d.fullPass)
	}
	return d.encode(w, tree)
}

// writeRegionMask serializes a document holding only the geometry of one region,
// painted opaque black. It is the input of the coverage mask used for hit testing.
func (d *Document) writeRegionMask(w io.Writer, id RegionID) error {
	reg := d.regions[id]

	masked := d.transform(reg.node, true, maskPass(reg.node))
	for i := len(reg.path) - 1; i >= 0; i-- {
		anc := reg.path[i]
		masked = &node{
			name:     anc.name,
			attrs:    dropAttrs(anc.attrs, append(append(fillProps, strokeProps...), opacityProps...)...),
			children: []*node{masked},
		}
	}
	return d.encode(w, masked)
}

// pass computes the attributes of a copied element. inRegion is set for every
// descendant of a paintable region.
type pass func(n *node, inRegion bool) []xml.Attr

// transform copies the tree rooted at n, rewriting attributes with p.
func (d *Document) transform(n *node, inRegion bool, p pass) *node {
	if n.isText() {
		return n
	}
	out := &node{name: n.name, attrs: p(n, inRegion)}
	_, isRegion := d.index[n]
	for _, c := range n.children {
		out.children = append(out.children, d.transform(c, inRegion || isRegion, p))
	}
	return out
}

func (d *Document) fullPass(n *node, _ bool) []xml.Attr {
	if id, ok := d.index[n]; ok {
		return withFill(n.attrs, d.fills[id])
	}
	return append([]xml.Attr(nil), n.attrs...)
}

func (d *Document) fillLayerPass(n *node, inRegion bool) []xml.Attr {
	attrs := dropAttrs(n.attrs, strokeProps...)
	if n == d.root {
		return setAttr(attrs, "stroke", "none")
	}
	if id, ok := d.index[n]; ok {
		return setAttr(withFill(attrs, d.fills[id]), "stroke", "none")
	}
	if inRegion {
		// Inherit the fill of the enclosing region.
		return setAttr(dropAttrs(attrs, fillProps...), "stroke", "none")
	}
	return setAttr(setAttr(dropAttrs(attrs, fillProps...), "fill", "none"), "stroke", "none")
}

func outlineLayerPass(n *node, _ bool) []xml.Attr {
	return setAttr(dropAttrs(n.attrs, fillProps...), "fill", "none")
}

func maskPass(target *node) pass {
	return func(n *node, _ bool) []xml.Attr {
		attrs := dropAttrs(n.attrs, append(append(fillProps, strokeProps...), opacityProps...)...)
		if n == target {
			attrs = setAttr(attrs, "fill", "#000000")
		}
		return setAttr(attrs, "stroke", "none")
	}
}

// withFill sets the fill attributes of a region to c.
func withFill(attrs []xml.Attr, c color.NRGBA) []xml.Attr {
	attrs = dropAttrs(attrs, fillProps...)
	if c.A == 0 {
		return setAttr(attrs, "fill", "none")
	}
	attrs = setAttr(attrs, "fill", utils.ToHex(c))
	if c.A < 0xff {
		attrs = setAttr(attrs, "fill-opacity", formatFloat(float64(c.A)/0xff))
	}
	return attrs
}

// dropAttrs returns a copy of attrs without the listed presentation attributes,
// also removing them from an inline style.
func dropAttrs(attrs []xml.Attr, props ...string) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs)+2)
	for _, a := range attrs {
		if a.Name.Space == "" {
			if contains(props, a.Name.Local) {
				continue
			}
			if a.Name.Local == "style" {
				style, _ := filterStyle(a.Value, props)
				if style == "" {
					continue
				}
				a.Value = style
			}
		}
		out = append(out, a)
	}
	return out
}

// setAttr returns attrs with name set to value.
func setAttr(attrs []xml.Attr, name, value string) []xml.Attr {
	for i, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			out := append([]xml.Attr(nil), attrs...)
			out[i].Value = value
			return out
		}
	}
	return append(attrs[:len(attrs):len(attrs)], xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// encode writes the tree as a standalone SVG document.
func (d *Document) encode(w io.Writer, root *node) error {
	ew := &errWriter{w: w}
	d.writeNode(ew, root, true)
	return ew.err
}

func (d *Document) writeNode(w *errWriter, n *node, isRoot bool) {
	if n.isText() {
		xml.EscapeText(w, n.text)
		return
	}
	name, ok := d.qualify(n.name)
	if !ok {
		return
	}

	w.WriteString("<" + name)
	declared := make(map[string]bool)
	for _, a := range n.attrs {
		an, ok := d.qualify(a.Name)
		if !ok {
			continue
		}
		declared[an] = true
		w.WriteString(" " + an + `="`)
		xml.EscapeText(w, []byte(a.Value))
		w.WriteString(`"`)
	}
	if isRoot && !declared["xmlns"] {
		w.WriteString(` xmlns="` + svgNS + `"`)
	}
	if isRoot && !declared["xmlns:xlink"] {
		w.WriteString(` xmlns:xlink="` + xlinkNS + `"`)
	}
	if len(n.children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteString(">")
	for _, c := range n.children {
		d.writeNode(w, c, false)
	}
	w.WriteString("</" + name + ">")
}

// qualify returns the prefixed name used for serialization. Names from namespaces
// without a known prefix are reported as not serializable.
func (d *Document) qualify(n xml.Name) (string, bool) {
	switch n.Space {
	case "":
		return n.Local, true
	case svgNS:
		return n.Local, true
	case "xmlns":
		return "xmlns:" + n.Local, true
	}
	if p, ok := d.prefixes[n.Space]; ok && p != "" {
		return p + ":" + n.Local, true
	}
	return "", false
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) WriteString(s string) {
	e.Write([]byte(s))
}
