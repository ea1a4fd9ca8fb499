// internal/browser/driver/scripts.go
package driver

import (
	"fmt"

	json "github.com/json-iterator/go"
)

// All page-side JavaScript lives in this file. Each script is an IIFE that
// resolves its locator with resolverPrelude, so nothing is cached between calls.

const resolverPrelude = `
	const __all = (by, expr) => {
		if (by === 'xpath') {
			const snap = document.evaluate(expr, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			const out = [];
			for (let i = 0; i < snap.snapshotLength; i++) out.push(snap.snapshotItem(i));
			return out;
		}
		if (by === 'id') {
			const el = document.getElementById(expr);
			return el ? [el] : [];
		}
		return Array.from(document.querySelectorAll(expr));
	};
	const __visible = (el) => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		return rect.width > 0 && rect.height > 0 && style.display !== 'none' &&
			style.visibility !== 'hidden' && style.opacity !== '0';
	};
	const __enabled = (el) => !el.disabled && el.getAttribute('aria-disabled') !== 'true';
`

func locatorArgs(loc Locator) string {
	return fmt.Sprintf("%s, %s, %d", jsonEncode(string(loc.By)), jsonEncode(loc.Value), loc.Index)
}

func probeScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const all = __all(by, expr);
	const el = all[idx];
	if (!el) return { count: all.length, present: false, visible: false, enabled: false, text: '' };
	return {
		count: all.length,
		present: true,
		visible: __visible(el),
		enabled: __enabled(el),
		text: (el.innerText || el.textContent || '')
	};
})(%s)`, resolverPrelude, locatorArgs(loc))
}

// textsScript reads the text of every visible match; hidden matches are skipped.
func textsScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	return __all(by, expr).filter(__visible).map(el => el.innerText || el.textContent || '');
})(%s)`, resolverPrelude, locatorArgs(loc))
}

// clickPointScript scrolls the element to the viewport center and returns the
// point a real click would land on. hit is false when something else covers it.
func clickPointScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return { found: false };
	el.scrollIntoView({ block: 'center', inline: 'center' });
	const rect = el.getBoundingClientRect();
	const x = rect.left + rect.width / 2;
	const y = rect.top + rect.height / 2;
	const top = document.elementFromPoint(x, y);
	const hit = top !== null && (top === el || el.contains(top));
	let cover = '';
	if (!hit && top) {
		cover = top.tagName.toLowerCase() + (top.id ? '#' + top.id : '') +
			(typeof top.className === 'string' && top.className ? '.' + top.className.trim().split(/\s+/).join('.') : '');
	}
	return { found: true, x: x, y: y, hit: hit, cover: cover };
})(%s)`, resolverPrelude, locatorArgs(loc))
}

func scriptClickScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return false;
	el.click();
	return true;
})(%s)`, resolverPrelude, locatorArgs(loc))
}

// clearScript empties an input and fires the events frameworks listen for.
func clearScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return false;
	if (el.disabled || el.readOnly) return false;
	el.focus();
	if ('value' in el) {
		el.value = '';
	} else if (el.isContentEditable) {
		el.textContent = '';
	}
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%s)`, resolverPrelude, locatorArgs(loc))
}

func focusScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return false;
	el.focus();
	return document.activeElement === el || el.contains(document.activeElement);
})(%s)`, resolverPrelude, locatorArgs(loc))
}

func scrollIntoViewScript(loc Locator) string {
	return fmt.Sprintf(`(function(by, expr, idx) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return false;
	el.scrollIntoView({ block: 'center', inline: 'nearest' });
	return true;
})(%s)`, resolverPrelude, locatorArgs(loc))
}

// scrollByScript scrolls the element's own content, not the page.
func scrollByScript(loc Locator, px int) string {
	return fmt.Sprintf(`(function(by, expr, idx, px) {
	%s
	const el = __all(by, expr)[idx];
	if (!el) return false;
	el.scrollTop = el.scrollTop + px;
	return true;
})(%s, %d)`, resolverPrelude, locatorArgs(loc), px)
}

const scrollHeightScript = `Math.max(
	document.body ? document.body.scrollHeight : 0,
	document.documentElement ? document.documentElement.scrollHeight : 0)`

func scrollToScript(y int64) string {
	return fmt.Sprintf(`(function(y) { window.scrollTo(0, y); return true; })(%d)`, y)
}

const readyStateScript = `document.readyState`

const outerHTMLScript = `document.documentElement ? document.documentElement.outerHTML : ''`

// jsonEncode safely encodes a value for embedding in a script.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
