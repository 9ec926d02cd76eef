package dev

import "strings"

// SessionPath is the WebSocket endpoint of the playground.
const SessionPath = "/_orbit/session"

// ClientScript connects a page to its playground session. It forwards
// events on elements carrying a data-oid and swaps in the body the server
// renders.
const ClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function target(e) {
        return e.target && e.target.closest ? e.target.closest('[data-oid]') : null;
    }

    function forward(e) {
        var el = target(e);
        if (!el) {
            return;
        }
        var msg = {type: 'event', oid: el.getAttribute('data-oid'), event: e.type};
        if (e.type === 'input' || e.type === 'change') {
            msg.value = el.value || '';
            msg.checked = !!el.checked;
        }
        if (e.type === 'submit') {
            e.preventDefault();
        }
        send(msg);
    }

    function render(html) {
        var active = document.activeElement;
        var oid = active && active.getAttribute ? active.getAttribute('data-oid') : null;
        var start = active && active.selectionStart;
        var end = active && active.selectionEnd;

        document.body.innerHTML = html;

        if (oid) {
            var next = document.querySelector('[data-oid="' + oid + '"]');
            if (next) {
                next.focus();
                if (typeof start === 'number' && next.setSelectionRange) {
                    try { next.setSelectionRange(start, end); } catch (err) {}
                }
            }
        }
    }

    function showError(error) {
        clearError();

        var overlay = document.createElement('div');
        overlay.id = 'orbit-error-overlay';
        overlay.style.cssText = 'position:fixed;left:0;right:0;bottom:0;background:rgba(0,0,0,0.85);color:#fff;font-family:monospace;font-size:13px;padding:12px 20px;z-index:999999;';
        overlay.textContent = error;
        overlay.onclick = clearError;
        document.documentElement.appendChild(overlay);
    }

    function clearError() {
        var overlay = document.getElementById('orbit-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '{{SESSION_PATH}}');

        ws.onopen = function() {
            console.log('[orbit] Session connected');
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'render':
                    render(msg.html);
                    break;

                case 'error':
                    console.error('[orbit]', msg.error);
                    showError(msg.error);
                    break;

                case 'reload':
                    location.reload();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    ['click', 'input', 'change', 'submit'].forEach(function(type) {
        document.addEventListener(type, forward, true);
    });

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`

// injectClient inserts the client script before the closing body tag.
func injectClient(page string) string {
	script := strings.Replace(ClientScript, "{{SESSION_PATH}}", SessionPath, 1)
	if idx := strings.LastIndex(page, "</body>"); idx != -1 {
		return page[:idx] + script + page[idx:]
	}
	if idx := strings.LastIndex(page, "</html>"); idx != -1 {
		return page[:idx] + script + page[idx:]
	}
	return page + script
}
