package glbackend

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/shader"
)

// uniformBinding is the UBO binding point every effect program uses.
const uniformBinding = 0

type pipeline struct {
	program  uint32
	name     string
	released bool
}

func (p *pipeline) Release() {
	if p.released {
		return
	}
	gl.DeleteProgram(p.program)
	p.released = true
}

// CreatePipeline compiles and links p, binds its uniform block to the
// shared binding point and assigns each sampler its texture unit.
func (d *Device) CreatePipeline(p gpu.Program) (gpu.Pipeline, error) {
	program, err := newProgram(p.Name, p.VertexSource, p.FragmentSource)
	if err != nil {
		return nil, err
	}

	block := uint32(gl.INVALID_INDEX)
	for _, name := range nameCandidates(p.Names, shader.UniformBlock) {
		block = gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
		if block != gl.INVALID_INDEX {
			break
		}
	}
	if block == gl.INVALID_INDEX {
		gl.DeleteProgram(program)
		return nil, &gpu.CompileError{Name: p.Name, Log: "uniform block " + shader.UniformBlock + " not found after linking"}
	}
	gl.UniformBlockBinding(program, block, uniformBinding)

	gl.UseProgram(program)
	for unit, decl := range shader.Samplers {
		for _, name := range nameCandidates(p.Names, decl) {
			if loc := gl.GetUniformLocation(program, gl.Str(name+"\x00")); loc >= 0 {
				gl.Uniform1i(loc, int32(unit))
				break
			}
		}
	}
	gl.UseProgram(0)

	if err := checkError("create pipeline " + p.Name); err != nil {
		gl.DeleteProgram(program)
		return nil, &gpu.CompileError{Name: p.Name, Log: err.Error()}
	}
	return &pipeline{program: program, name: p.Name}, nil
}

func newProgram(name, vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(name, vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(name, fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &gpu.CompileError{Name: name, Log: "link: " + strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

func compileShader(name, source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, &gpu.CompileError{Name: name, Log: strings.TrimRight(logText, "\x00")}
	}
	return shader, nil
}
