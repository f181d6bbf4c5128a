package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/tracer"
)

// An interactive opengl-based renderer: each pass is blitted from the
// frame buffer to the window, so the image visibly converges while
// accumulation runs. The caller must lock the OS thread before using it.
type InteractiveRenderer struct {
	*defaultRenderer

	// opengl handles
	window *glfw.Window
	texFbo uint32
}

// Create a new interactive renderer using the specified block scheduler.
func NewInteractive(sc *compiler.Scene, scheduler tracer.BlockScheduler, opts Options) (*InteractiveRenderer, error) {
	base, err := NewDefault(sc, scheduler, opts)
	if err != nil {
		return nil, err
	}

	r := &InteractiveRenderer{
		defaultRenderer: base.(*defaultRenderer),
	}

	if err = r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *InteractiveRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "ray-otami", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	r.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	// Setup texture for image data
	var fbTexture uint32
	gl.GenTextures(1, &fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	return nil
}

// Run the render loop until the window is closed.
func (r *InteractiveRenderer) Run() error {
	frameW := int32(r.options.FrameW)
	frameH := int32(r.options.FrameH)

	for !r.window.ShouldClose() {
		if err := r.Render(); err != nil {
			return err
		}

		// Update texture with frame data. The blit flips Y: the frame
		// buffer is stored top-down while gl textures grow bottom-up.
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, frameW, frameH, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&r.frameBuffer[0]))

		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, frameW, frameH, 0, frameH, frameW, 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		r.window.SwapBuffers()
		glfw.PollEvents()
	}

	return nil
}

func (r *InteractiveRenderer) Close() {
	if r.window != nil {
		r.window.Destroy()
		glfw.Terminate()
		r.window = nil
	}
	r.defaultRenderer.Close()
}
