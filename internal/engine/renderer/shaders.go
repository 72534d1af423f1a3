package renderer

const solidVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	vNormal = aNormal;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const solidFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uColor;
uniform float uEmissive;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
	float diff = abs(dot(normalize(vNormal), uLightDir));
	vec3 lit = uColor * (0.3 + 0.7 * diff);
	FragColor = vec4(mix(lit, uColor, uEmissive), 1.0);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
