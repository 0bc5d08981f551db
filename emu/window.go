package emu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"chipster/emu/log"
	"chipster/hw"
	"chipster/hw/input"
)

const windowTitle = "Chipster"

// Window is an Output showing the framebuffer in an OpenGL window, as a full
// window textured quad. All SDL calls are performed on the main thread, so the
// emulator must run within sdl.Main.
type Window struct {
	*sdl.Window
	prog    uint32
	texture uint32
	vao     uint32
	context sdl.GLContext

	keys    *input.Provider
	palette Palette
	img     *image.RGBA
	title   string
}

// NewWindow creates a window for a framebuffer of size (texw, texh).
func NewWindow(cfg Config, texw, texh int) (*Window, error) {
	type result struct {
		w   *Window
		err error
	}
	errc := make(chan result, 1)
	sdl.Do(func() {
		w, err := newWindow(cfg.Video, texw, texh)
		errc <- result{w, err}
	})
	res := <-errc
	if res.err != nil {
		return nil, res.err
	}

	w := res.w
	w.keys = input.NewProvider(cfg.Input)
	w.palette = Palette{Foreground: cfg.Video.Foreground, Background: cfg.Video.Background}
	w.img = image.NewRGBA(image.Rect(0, 0, texw, texh))
	w.title = windowTitle
	return w, nil
}

func newWindow(vcfg VideoConfig, texw, texh int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winw := int32(texw * vcfg.Scale)
	winh := int32(texh * vcfg.Scale)
	pos := int32(sdl.WINDOWPOS_CENTERED_MASK) | vcfg.Monitor
	w, err := sdl.CreateWindow(windowTitle, pos, pos, winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	context, err := w.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	interval := 1
	if vcfg.DisableVSync {
		interval = 0
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.ModVideo.Warnf("failed to set swap interval: %s", err)
	}
	log.ModVideo.InfoZ("Window created").
		Int("width", int(winw)).
		Int("height", int(winh)).
		Bool("vsync", !vcfg.DisableVSync).
		End()

	// Create empty texture buffer.
	tbuf := make([]byte, texw*texh*4)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(texw), int32(texh), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&tbuf[0]))

	vert, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader compilation: %s", err)
	}

	frag, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader compilation: %s", err)
	}

	prog, err := linkProgram(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("shader program link: %s", err)
	}

	var VBO, VAO, EBO uint32
	gl.GenVertexArrays(1, &VAO)
	gl.GenBuffers(1, &VBO)
	gl.GenBuffers(1, &EBO)

	gl.BindVertexArray(VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return &Window{
		Window:  w,
		prog:    prog,
		texture: texture,
		vao:     VAO,
		context: context,
	}, nil
}

func (w *Window) Poll(ctl *Controls) bool {
	open := true
	sdl.Do(func() {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			switch ev := ev.(type) {
			case *sdl.QuitEvent:
				open = false
			case *sdl.KeyboardEvent:
				if ev.Type == sdl.KEYDOWN {
					keyDown(ctl, ev.Keysym.Scancode, ev.Repeat != 0)
				}
			}
		}
	})
	ctl.Keypad = w.keys.Keypad()
	return open
}

func keyDown(ctl *Controls, sc sdl.Scancode, repeat bool) {
	// Only menu navigation keys repeat.
	switch sc {
	case sdl.SCANCODE_UP:
		ctl.Up = true
	case sdl.SCANCODE_DOWN:
		ctl.Down = true
	case sdl.SCANCODE_LEFT:
		ctl.Left = true
	case sdl.SCANCODE_RIGHT:
		ctl.Right = true
	}
	if repeat {
		return
	}

	switch sc {
	case sdl.SCANCODE_ESCAPE:
		ctl.Escape = true
	case sdl.SCANCODE_SPACE:
		ctl.Pause = true
	case sdl.SCANCODE_F1:
		ctl.Reset = true
	case sdl.SCANCODE_F5:
		ctl.Save = true
	case sdl.SCANCODE_F9:
		ctl.Load = true
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
		ctl.Enter = true
	}
}

func (w *Window) Present(m *hw.Machine) {
	w.palette.Render(w.img, m)
	sdl.Do(func() {
		w.setTitle(windowTitle)
		w.draw(w.img.Pix)
	})
}

// ShowMenu shows the selected ROM in the window title, on a blank screen.
func (w *Window) ShowMenu(menu *Menu) {
	clear(w.img.Pix)
	sdl.Do(func() {
		w.setTitle(windowTitle + " - " + menu.Title(menu.Cursor()))
		w.draw(w.img.Pix)
	})
}

func (w *Window) setTitle(title string) {
	if title != w.title {
		w.SetTitle(title)
		w.title = title
	}
}

func (w *Window) draw(pix []byte) {
	dw, dh := w.GLGetDrawableSize()
	gl.Viewport(0, 0, dw, dh)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	bounds := w.img.Rect
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(bounds.Dx()), int32(bounds.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pix[0]))

	gl.UseProgram(w.prog)
	gl.BindVertexArray(w.vao)
	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	w.GLSwap()
}

func (w *Window) Close() error {
	errc := make(chan error, 1)
	sdl.Do(func() {
		if w.context != nil {
			sdl.GLDeleteContext(w.context)
		}
		err := w.Destroy()
		sdl.Quit()
		errc <- err
	})
	return <-errc
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}

const vertexShaderSource = `
#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;

out vec2 TexCoord;

void main() {
    gl_Position = vec4(aPos, 1.0);
    TexCoord = aTexCoord;
}
` + "\x00"

const fragmentShaderSource = `
#version 330 core
out vec4 FragColor;
in vec2 TexCoord;

uniform sampler2D ourTexture;

void main() {
    FragColor = texture(ourTexture, TexCoord);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)

		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])

		return 0, fmt.Errorf("shader compile error: %v", string(log))
	}

	return sh, nil
}

func linkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	prg := gl.CreateProgram()
	gl.AttachShader(prg, vertexShader)
	gl.AttachShader(prg, fragmentShader)
	gl.LinkProgram(prg)

	var status int32
	if gl.GetProgramiv(prg, gl.LINK_STATUS, &status); status == gl.FALSE {
		var logLength int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prg, int32(len(glLog)), &logLength, &glLog[0])
		return 0, fmt.Errorf("shader program link error: %v", string(glLog[:logLength]))
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return prg, nil
}
