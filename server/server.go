// Package server exposes Netpbm conversion over HTTP and websockets.
package server

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/labstack/gommon/log"
	"github.com/tmpim/netpbm"
)

// Request limits. Decoding needs about 24 bytes of memory per pixel.
const (
	maxBody    = "16M"
	maxMessage = 16 << 20
	maxPixels  = 1 << 24
)

// Server routes conversion requests. Every request works on its own images,
// so handlers share no pixel state.
type Server struct {
	echo     *echo.Echo
	upgrader websocket.Upgrader
}

// FormatInfo describes a supported format in /api/formats.
type FormatInfo struct {
	Tag       string `json:"tag"`
	Extension string `json:"extension"`
	MIMEType  string `json:"mimeType"`
	Binary    bool   `json:"binary"`
	MaxValue  bool   `json:"maxValue"`
}

// HeaderInfo is the response of /api/info.
type HeaderInfo struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MaxValue int    `json:"maxValue,omitempty"`
}

// Control is a websocket text message selecting the target of subsequent
// conversions. Zero fields keep their current value.
type Control struct {
	Format   string `json:"format"`
	MaxValue int    `json:"maxValue"`
	Order    string `json:"order"`
}

// New returns a server with request logging at the given level.
func New(level log.Lvl) *Server {
	s := &Server{
		echo: echo.New(),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
		},
	}

	s.echo.HideBanner = true
	s.echo.Logger.SetLevel(level)
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.BodyLimit(maxBody))

	api := s.echo.Group("/api")
	api.GET("/formats", s.formats)
	api.POST("/info", s.info)
	api.POST("/convert/:format", s.convert)
	api.POST("/blank/:format", s.blank)
	api.GET("/client", s.client)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until the server fails.
func (s *Server) Start(addr string) error {
	s.echo.Logger.Infof("netpbm server: listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) formats(c echo.Context) error {
	var infos []FormatInfo
	for _, f := range netpbm.Formats() {
		infos = append(infos, FormatInfo{
			Tag:       f.String(),
			Extension: f.Extension(),
			MIMEType:  f.MIMEType(),
			Binary:    f.IsBinary(),
			MaxValue:  f.HasMaxValue(),
		})
	}
	return c.JSON(http.StatusOK, infos)
}

func (s *Server) info(c echo.Context) error {
	h, err := netpbm.DecodeHeader(c.Request().Body)
	if err != nil {
		return httpError(err)
	}

	info := HeaderInfo{
		Format: h.Format.String(),
		Width:  h.Width,
		Height: h.Height,
	}
	if h.Format.HasMaxValue() {
		info.MaxValue = h.MaxValue
	}
	return c.JSON(http.StatusOK, &info)
}

func (s *Server) convert(c echo.Context) error {
	target, err := netpbm.ParseFormat(c.Param("format"))
	if err != nil {
		return httpError(err)
	}

	ctl := Control{
		Format: target.String(),
		Order:  c.QueryParam("order"),
	}
	if v := c.QueryParam("max"); v != "" {
		ctl.MaxValue, err = strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max must be an integer")
		}
	}

	data, err := convert(c.Request().Body, ctl)
	if err != nil {
		return httpError(err)
	}

	return c.Blob(http.StatusOK, target.MIMEType(), data)
}

func (s *Server) blank(c echo.Context) error {
	target, err := netpbm.ParseFormat(c.Param("format"))
	if err != nil {
		return httpError(err)
	}

	width, err := strconv.Atoi(c.QueryParam("width"))
	if err != nil || width < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "width must be a non-negative integer")
	}
	height, err := strconv.Atoi(c.QueryParam("height"))
	if err != nil || height < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "height must be a non-negative integer")
	}
	if width > 0 && height > maxPixels/width {
		return echo.NewHTTPError(http.StatusBadRequest, "image too large")
	}

	fill := netpbm.Black
	if v := c.QueryParam("fill"); v != "" {
		fill, err = netpbm.ParseColor(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	buf := new(bytes.Buffer)
	if err := netpbm.NewImageFill(width, height, target, fill).Encode(buf); err != nil {
		return httpError(err)
	}

	return c.Blob(http.StatusOK, target.MIMEType(), buf.Bytes())
}

func (s *Server) client(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	ws.SetReadLimit(maxMessage)

	s.echo.Logger.Debugf("netpbm server: client connected from %s", c.RealIP())

	ctl := Control{Format: netpbm.PPMBinary.String()}
	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			s.echo.Logger.Debugf("netpbm server: client disconnected: %v", err)
			return nil
		}

		switch msgType {
		case websocket.TextMessage:
			next, err := parseControl(data)
			if err != nil {
				if err := writeError(ws, err); err != nil {
					return nil
				}
				continue
			}
			ctl = merge(ctl, next)

		case websocket.BinaryMessage:
			out, err := convert(bytes.NewReader(data), ctl)
			if err != nil {
				err = writeError(ws, err)
			} else {
				err = ws.WriteMessage(websocket.BinaryMessage, out)
			}
			if err != nil {
				s.echo.Logger.Warnf("netpbm server: write to client failed: %v", err)
				return nil
			}
		}
	}
}

func parseControl(data []byte) (Control, error) {
	var ctl Control
	if err := json.Unmarshal(data, &ctl); err != nil {
		return Control{}, err
	}
	if ctl.Format != "" {
		if _, err := netpbm.ParseFormat(ctl.Format); err != nil {
			return Control{}, err
		}
	}
	if ctl.Order != "" && ctl.Order != "little" && ctl.Order != "big" {
		return Control{}, errBadOrder
	}
	return ctl, nil
}

func merge(ctl, next Control) Control {
	if next.Format != "" {
		ctl.Format = next.Format
	}
	if next.MaxValue != 0 {
		ctl.MaxValue = next.MaxValue
	}
	if next.Order != "" {
		ctl.Order = next.Order
	}
	return ctl
}

func writeError(ws *websocket.Conn, err error) error {
	msg, _ := json.Marshal(map[string]string{"error": err.Error()})
	return ws.WriteMessage(websocket.TextMessage, msg)
}

// convert decodes a Netpbm file of any format and re-encodes it as ctl asks.
// The source max value carries over unless ctl sets one.
func convert(r io.Reader, ctl Control) ([]byte, error) {
	target, err := netpbm.ParseFormat(ctl.Format)
	if err != nil {
		return nil, err
	}

	// the header is read twice, once here to check the size
	var head bytes.Buffer
	h, err := netpbm.DecodeHeader(io.TeeReader(r, &head))
	if err != nil {
		return nil, err
	}
	if h.Width > 0 && h.Height > maxPixels/h.Width {
		return nil, errTooLarge
	}

	src, err := netpbm.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, err
	}

	out := netpbm.NewImage(0, 0, target)
	out.SetPixmap(src.Pixmap())
	if ctl.MaxValue != 0 {
		out.SetMaxValue(ctl.MaxValue)
	} else if src.Format().HasMaxValue() {
		out.SetMaxValue(src.MaxValue())
	}

	switch ctl.Order {
	case "big":
		out.SetByteOrder(binary.BigEndian)
	case "little", "":
		out.SetByteOrder(binary.LittleEndian)
	default:
		return nil, errBadOrder
	}

	buf := new(bytes.Buffer)
	if err := out.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	errBadOrder = errors.New(`netpbm server: order must be "little" or "big"`)
	errTooLarge = errors.New("netpbm server: image too large")
)

func httpError(err error) error {
	switch {
	case errors.Is(err, errTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, netpbm.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, netpbm.ErrFormatMismatch),
		errors.Is(err, netpbm.ErrMalformedHeader),
		errors.Is(err, netpbm.ErrMalformedData),
		errors.Is(err, netpbm.ErrTruncatedData),
		errors.Is(err, errBadOrder):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
