package ui

// DefaultCSS is the built-in editor theme. A file passed to Engine.LoadCSS replaces it.
// Negative left/top offsets are measured from the right/bottom edge.
const DefaultCSS = `
.toolbar { background: #202228; border: #3a3d46; left: 12px; top: 8px; width: 620px; height: 40px; }
.tool { background: #2c2f38; color: #c8ccd4; width: 96px; height: 28px; top: 14px; padding: 6px; font-size: 16px; }
.active { background: #3d6fd9; color: #ffffff; }
#tool-translate { left: 18px; }
#tool-rotate { left: 118px; }
#tool-scale { left: 218px; }
#tool-group { left: 330px; }
#tool-ungroup { left: 430px; }
#tool-clear { left: 530px; }

.inspector { background: rgba(20, 22, 28, 0.9); border: #3a3d46; left: -12px; top: 60px; width: 300px; height: 186px; }
.inspector-title { color: #8fb3ff; left: -18px; top: 66px; width: 288px; height: 24px; }
.inspector-row { color: #dde1e8; width: 288px; height: 22px; left: -18px; font-size: 16px; padding: 2px; }
#inspector-name { top: 94px; }
#inspector-kind { top: 116px; }
#inspector-position { top: 138px; }
#inspector-rotation { top: 160px; }
#inspector-scale { top: 182px; }
#inspector-count { top: 204px; }
`
