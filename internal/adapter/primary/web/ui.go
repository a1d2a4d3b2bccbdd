package web

import "net/http"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

// The page recomputes progress from the absolute dates every animation frame
// and only refetches when the server pushes an event.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Pomotimer</title>
    <style>
        body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .clock { font-size: 64px; font-variant-numeric: tabular-nums; text-align: center; }
        .bar { height: 12px; background: #ddd; border-radius: 6px; overflow: hidden; }
        .fill { height: 100%; width: 0; }
        .red { background: #d9534f; } .green { background: #5cb85c; } .blue { background: #0275d8; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; margin: 2px; }
        button:hover { background: #0056b3; }
        input { padding: 8px; margin: 5px; }
        ul { padding-left: 20px; }
        li.done { text-decoration: line-through; color: #888; }
    </style>
</head>
<body>
    <h1>Pomotimer</h1>
    <div class="info">
        <div id="mode">Loading...</div>
        <div class="clock" id="clock">--:--</div>
        <div class="bar"><div class="fill" id="fill"></div></div>
        <div id="sessions"></div>
    </div>
    <div>
        <button onclick="act('focus')">Focus</button>
        <button onclick="act('break')">Break</button>
        <button onclick="act('break?long=true')">Long break</button>
        <button onclick="act('pause')">Pause</button>
        <button onclick="act('resume')">Resume</button>
        <button onclick="act('skip')">Skip</button>
        <button onclick="act('stop')">Stop</button>
    </div>
    <div class="info" id="stats"></div>
    <h2>Tasks</h2>
    <div>
        <input type="text" id="title" placeholder="New task">
        <button onclick="addTask()">Add</button>
    </div>
    <ul id="tasks"></ul>
    <script>
        let state = null;

        function fraction(s, now) {
            if (!s.startDate || !s.endDate) return 0;
            const start = Date.parse(s.startDate);
            const total = Date.parse(s.endDate) - start;
            if (total <= 0) return 1;
            let effective = now;
            if (s.status === 'paused' && s.pauseDate) effective = Date.parse(s.pauseDate);
            const f = (effective - start - s.accumulatedPause * 1000) / total;
            return Math.min(1, Math.max(0, f));
        }

        function remaining(s, now) {
            if (s.status === 'idle') return s.duration;
            if (!s.startDate || !s.endDate) return 0;
            const total = (Date.parse(s.endDate) - Date.parse(s.startDate)) / 1000;
            return Math.max(0, total * (1 - fraction(s, now)));
        }

        function format(secs) {
            const total = Math.ceil(secs);
            const m = Math.floor(total / 60);
            const r = total % 60;
            return String(m).padStart(2, '0') + ':' + String(r).padStart(2, '0');
        }

        function render() {
            if (state) {
                const now = Date.now();
                document.getElementById('mode').textContent = state.modeName + ' (' + state.status + ')';
                document.getElementById('clock').textContent = format(remaining(state, now));
                const fill = document.getElementById('fill');
                fill.className = 'fill ' + state.modeColorName;
                fill.style.width = (fraction(state, now) * 100) + '%';
                document.getElementById('sessions').textContent =
                    'Sessions: ' + state.sessionCount + ' / ' + state.totalSessions;
            }
            requestAnimationFrame(render);
        }

        async function loadState() {
            const res = await fetch('/api/state');
            state = await res.json();
        }

        async function loadStats() {
            const res = await fetch('/api/stats?days=7');
            if (!res.ok) return;
            const data = await res.json();
            document.getElementById('stats').textContent =
                'Last 7 days: ' + data.focusSessions + ' sessions, ' +
                Math.round(data.focusSeconds / 60) + ' min focused, streak ' + data.streak;
        }

        async function loadTasks() {
            const res = await fetch('/api/tasks');
            if (!res.ok) return;
            const tasks = await res.json();
            const list = document.getElementById('tasks');
            list.innerHTML = '';
            for (const task of tasks) {
                const li = document.createElement('li');
                li.textContent = task.title + ' ';
                if (task.done) li.className = 'done';
                const toggle = document.createElement('button');
                toggle.textContent = task.done ? 'Undo' : 'Done';
                toggle.onclick = () => patchTask(task.id, {done: !task.done});
                const del = document.createElement('button');
                del.textContent = 'Delete';
                del.onclick = () => deleteTask(task.id);
                li.appendChild(toggle);
                li.appendChild(del);
                list.appendChild(li);
            }
        }

        async function act(action) {
            const res = await fetch('/api/' + action, {method: 'POST'});
            state = await res.json();
        }

        async function addTask() {
            const input = document.getElementById('title');
            await fetch('/api/tasks', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({title: input.value})
            });
            input.value = '';
            await loadTasks();
        }

        async function patchTask(id, payload) {
            await fetch('/api/tasks/' + id, {
                method: 'PATCH',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify(payload)
            });
            await loadTasks();
        }

        async function deleteTask(id) {
            await fetch('/api/tasks/' + id, {method: 'DELETE'});
            await loadTasks();
        }

        const events = new EventSource('/api/events');
        for (const name of ['state', 'finished', 'cycle_complete']) {
            events.addEventListener(name, (e) => {
                state = JSON.parse(e.data);
                if (name !== 'state') loadStats();
            });
        }

        loadState();
        loadStats();
        loadTasks();
        requestAnimationFrame(render);
    </script>
</body>
</html>`
