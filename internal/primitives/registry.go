package primitives

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/scene"
)

// cached holds the GPU mesh and material for one shape. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps shape names to mesh+material. Meshes are created on first use so GPU
// resources are only allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[string]cached
	shader   rl.Shader
	shaderOK bool
	viewPos  [3]float32
	lightDir [3]float32
}

// NewRegistry returns an empty registry. Nothing touches the GPU until Draw.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		lightDir: [3]float32{0.4, 1, 0.3},
	}
}

// SetView sets camera position and direction-to-light for this frame.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

func genMesh(shape string) rl.Mesh {
	switch shape {
	case "sphere":
		// Radius 0.5 so the diameter matches the unit cube.
		return rl.GenMeshSphere(0.5, 16, 16)
	case "cylinder":
		return rl.GenMeshCylinder(0.5, 1, 16)
	case "plane":
		return rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return rl.GenMeshCube(1, 1, 1)
	}
}

// centerOffset shifts meshes whose raylib origin is not their center. The cylinder has
// its base at Y=0, so it is moved down by half its height.
func centerOffset(shape string) rl.Matrix {
	if shape == "cylinder" {
		return rl.MatrixTranslate(0, -0.5, 0)
	}
	return rl.MatrixIdentity()
}

func (r *Registry) ensure(shape string) cached {
	if c, ok := r.cache[shape]; ok {
		return c
	}
	if !r.shaderOK {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
		r.shaderOK = rl.IsShaderValid(r.shader)
	}
	c := cached{mesh: genMesh(shape), mtl: rl.LoadMaterialDefault()}
	if r.shaderOK {
		c.mtl.Shader = r.shader
	}
	r.cache[shape] = c
	return c
}

// Draw renders one mesh node at world matrix m using its material. Wireframe materials
// (highlight overlays) are drawn in line mode. Call between BeginMode3D and EndMode3D.
func (r *Registry) Draw(shape string, m rl.Matrix, mat scene.Material) {
	if !Known(shape) {
		shape = "cube"
	}
	c := r.ensure(shape)
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = ToColor(mat.Color)
	}
	r.setUniforms(mat)
	transform := rl.MatrixMultiply(centerOffset(shape), m)
	if mat.Wireframe {
		rl.EnableWireMode()
		rl.DrawMesh(c.mesh, c.mtl, transform)
		rl.DisableWireMode()
		return
	}
	rl.DrawMesh(c.mesh, c.mtl, transform)
}

// Unload releases every GPU resource the registry allocated.
func (r *Registry) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, k)
	}
	if r.shaderOK {
		rl.UnloadShader(r.shader)
		r.shaderOK = false
	}
}

func (r *Registry) setUniforms(mat scene.Material) {
	if !r.shaderOK {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	emissive := [3]float32{mat.Emissive.X, mat.Emissive.Y, mat.Emissive.Z}
	lit := float32(1)
	if mat.Model == scene.MaterialBasic || mat.Wireframe {
		lit = 0
	}
	if loc := rl.GetShaderLocation(r.shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "emissive"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, emissive[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lit"); loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{lit}, rl.ShaderUniformFloat)
	}
}

// ToColor converts a 0..1 color to raylib's byte color, clamping each channel.
func ToColor(c rl.Vector4) rl.Color {
	conv := func(v float32) uint8 {
		return uint8(math32.Floor(math32.Max(0, math32.Min(1, v))*255 + 0.5))
	}
	return rl.NewColor(conv(c.X), conv(c.Y), conv(c.Z), conv(c.W))
}

// Lit shader: directional light + ambient, plus an emissive term that highlighting
// raises. lit=0 draws the flat albedo (basic materials and overlays).
const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  fragPosition = vec3(matModel * vec4(vertexPosition, 1.0));
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec3 emissive;
uniform float lit;
out vec4 finalColor;
void main() {
  vec3 base = colDiffuse.rgb;
  if (lit < 0.5) {
    finalColor = vec4(base + emissive, colDiffuse.a);
    return;
  }
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float diffuse = max(dot(N, L), 0.0) * 0.75;
  float spec = pow(max(dot(N, normalize(L + V)), 0.0), 48.0) * 0.3;
  vec3 color = base * (0.22 + diffuse) + vec3(spec) + emissive;
  finalColor = vec4(color, colDiffuse.a);
}
`
)
