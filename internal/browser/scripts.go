package browser

// page functions, evaluated with rod's Page.Eval

const discoverJS = `(videoSel, containerSel, newID) => {
	const video = document.querySelector(videoSel);
	if (!video) return { found: false, url: location.href };
	let container = containerSel ? video.closest(containerSel) : null;
	if (!container) container = video.parentElement;
	if (!container) return { found: false, url: location.href };
	if (!container.dataset.subplayId) container.dataset.subplayId = newID;
	if (getComputedStyle(container).position === 'static') container.style.position = 'relative';
	return { found: true, id: container.dataset.subplayId, url: location.href };
}`

const videoStateJS = `(sel) => {
	const v = document.querySelector(sel);
	if (!v) return { found: false };
	const r = v.getBoundingClientRect();
	return {
		found: true,
		time: v.currentTime,
		width: r.width,
		height: r.height,
		readyState: v.readyState,
		fullscreen: !!document.fullscreenElement,
	};
}`

const mountRectJS = `(mount) => {
	const c = document.querySelector('[data-subplay-id="' + mount + '"]');
	if (!c) return { found: false };
	const r = c.getBoundingClientRect();
	return { found: true, width: r.width, height: r.height };
}`

const ensureRegionJS = `(mount, id) => {
	const c = document.querySelector('[data-subplay-id="' + mount + '"]');
	if (!c) return false;
	let el = document.getElementById(id);
	if (!el) {
		el = document.createElement('div');
		el.id = id;
		el.style.display = 'none';
		c.appendChild(el);
	}
	return true;
}`

const showRegionJS = `(id, html) => {
	const el = document.getElementById(id);
	if (!el) return false;
	el.innerHTML = html;
	el.style.display = 'block';
	return true;
}`

const hideRegionJS = `(id) => {
	const el = document.getElementById(id);
	if (!el) return false;
	el.style.display = 'none';
	el.innerHTML = '';
	return true;
}`

const styleRegionJS = `(id, css) => {
	const el = document.getElementById(id);
	if (!el) return false;
	const display = el.style.display;
	el.style.cssText = css;
	el.style.display = display;
	return true;
}`

const removeElementJS = `(id) => {
	const el = document.getElementById(id);
	if (el) el.remove();
}`

const upsertStyleJS = `(id, css) => {
	let el = document.getElementById(id);
	if (!el) {
		el = document.createElement('style');
		el.id = id;
		document.head.appendChild(el);
	}
	el.textContent = css;
}`

const containerStyleJS = `(mount, fontSize, opacity, translateY) => {
	const c = document.querySelector('[data-subplay-id="' + mount + '"]');
	if (!c) return false;
	c.style.fontSize = fontSize + 'px';
	c.style.opacity = String(opacity);
	c.style.transform = 'translateY(' + translateY + 'px)';
	return true;
}`

const resetContainerStyleJS = `(mount) => {
	const c = document.querySelector('[data-subplay-id="' + mount + '"]');
	if (!c) return;
	c.style.fontSize = '';
	c.style.opacity = '';
	c.style.transform = '';
}`

const loadScriptJS = `(src) => new Promise((resolve, reject) => {
	if (window.ASS) return resolve(true);
	const s = document.createElement('script');
	s.src = src;
	s.onload = () => resolve(!!window.ASS);
	s.onerror = () => reject(new Error('failed to load ' + src));
	document.head.appendChild(s);
})`

const newASSJS = `(handle, content, videoSel, mount, config) => {
	const video = document.querySelector(videoSel);
	const container = document.querySelector('[data-subplay-id="' + mount + '"]');
	if (!video || !container) throw new Error('video or mount point missing');
	const inst = new window.ASS(content, video, Object.assign({}, config, { container }));
	window.__subplayASS = window.__subplayASS || {};
	window.__subplayASS[handle] = inst;
	return true;
}`

const resizeASSJS = `(handle) => {
	const inst = (window.__subplayASS || {})[handle];
	if (inst && typeof inst.resize === 'function') inst.resize();
}`

// renderers without destroy are disposed instead
const destroyASSJS = `(handle) => {
	const all = window.__subplayASS || {};
	const inst = all[handle];
	if (!inst) return;
	if (typeof inst.destroy === 'function') inst.destroy();
	else if (typeof inst.dispose === 'function') inst.dispose();
	delete all[handle];
}`

const checkFontsJS = `(fonts) => fonts.filter((f) => document.fonts.check('16px "' + f + '"'))`
