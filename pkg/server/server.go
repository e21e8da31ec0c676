// Package server exposes the command registry over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/Fepozopo/imgproc/pkg/command"
	"github.com/Fepozopo/imgproc/pkg/config"
	"github.com/Fepozopo/imgproc/pkg/filter"
	"github.com/Fepozopo/imgproc/pkg/imageio"
	"github.com/Fepozopo/imgproc/pkg/raster"
	"github.com/Fepozopo/imgproc/pkg/sample"
)

// imageFields names the multipart fields holding the input images, in order.
var imageFields = []string{"image", "image2"}

// Server routes requests to the filter engine.
type Server struct {
	cfg     config.Config
	store   *command.MetaStore
	decoder *imageio.Decoder
	router  *gin.Engine
}

// New builds a server with gin's default logger and recovery middleware.
func New(cfg config.Config) *Server {
	s := &Server{
		cfg:     cfg,
		store:   command.NewMetaStore(command.Commands),
		decoder: imageio.NewDecoder(cfg.MemoryFraction),
		router:  gin.Default(),
	}
	api := s.router.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/commands", s.getCommands)
			v1.GET("/commands/:name", s.getCommand)
			v1.POST("/commands/:name", s.postCommand)
		}
	}
	return s
}

// Handler returns the router for use with net/http or httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address.
func (s *Server) Run() error {
	return s.router.Run(s.cfg.Addr)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

type commandInfo struct {
	Name        string                            `json:"name"`
	Inputs      int                               `json:"inputs"`
	Usage       string                            `json:"usage"`
	Description string                            `json:"description"`
	Help        string                            `json:"help,omitempty"`
	Args        map[string]command.ValidationRule `json:"args,omitempty"`
}

func (s *Server) getCommands(c *gin.Context) {
	out := make([]commandInfo, 0, len(s.store.Commands))
	for _, cmd := range s.store.Commands {
		out = append(out, commandInfo{Name: cmd.Name, Inputs: cmd.Inputs, Usage: cmd.Usage, Description: cmd.Description})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCommand(c *gin.Context) {
	name := c.Param("name")
	cmd, err := s.store.Spec(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	help, rules, _ := s.store.GetCommandHelp(name)
	c.JSON(http.StatusOK, commandInfo{
		Name:        cmd.Name,
		Inputs:      cmd.Inputs,
		Usage:       cmd.Usage,
		Description: cmd.Description,
		Help:        help,
		Args:        rules,
	})
}

// postCommand applies a command to the uploaded images. Multipart fields:
// image (and image2 for binary commands), repeated arg values in order and
// an optional seed overriding the configured one. The result is a PNG.
func (s *Server) postCommand(c *gin.Context) {
	name := c.Param("name")
	cmd, err := s.store.Spec(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]*raster.Image, cmd.Inputs)
	for i := range inputs {
		fh, err := c.FormFile(imageFields[i])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("missing form file %q", imageFields[i])})
			return
		}
		img, err := s.decodeUpload(fh)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, imageio.ErrTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		inputs[i] = img
	}

	seed := s.cfg.Seed
	if raw := c.PostForm("seed"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid seed %q", raw)})
			return
		}
		seed = uint32(n)
	}

	out, err := command.Apply(name, inputs, c.PostFormArray("arg"), sample.New(seed))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, out, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) decodeUpload(fh *multipart.FileHeader) (*raster.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := s.decoder.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return img, nil
}

// statusFor maps command errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, command.ErrInvalidArgument),
		errors.Is(err, command.ErrInputCount),
		errors.Is(err, filter.ErrSizeMismatch),
		errors.Is(err, filter.ErrInvalidMask),
		errors.Is(err, filter.ErrInvalidParameter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
